package logging

import (
	"time"
)

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Strings(key string, values []string) Field {
	return Field{Key: key, Value: values}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain field helpers

func Component(name string) Field {
	return String("component", name)
}

func RunID(id string) Field {
	return String("run_id", id)
}

func Entity(name string) Field {
	return String("entity", name)
}

func Endpoint(url string) Field {
	return String("endpoint", url)
}

// Role is "reference" or "sample"
func Role(role string) Field {
	return String("role", role)
}

func Dialect(name string) Field {
	return String("dialect", name)
}

func Phase(name string) Field {
	return String("phase", name)
}

func Direction(name string) Field {
	return String("direction", name)
}

func Query(q string) Field {
	return String("query", q)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}
