package introspection

import (
	"encoding/json"
	"errors"
	"testing"
)

const sampleSchemaJSON = `{
  "queryType": {"name": "Query"},
  "types": [
    {"kind": "OBJECT", "name": "Token", "fields": [
      {"name": "id", "type": {"kind": "NON_NULL", "name": null, "ofType": {"kind": "SCALAR", "name": "ID", "ofType": null}}},
      {"name": "symbol", "type": {"kind": "SCALAR", "name": "String", "ofType": null}}
    ]},
    {"kind": "OBJECT", "name": "Query", "fields": [
      {"name": "token", "type": {"kind": "OBJECT", "name": "Token", "ofType": null}},
      {"name": "tokens", "type": {"kind": "NON_NULL", "name": null, "ofType": {"kind": "LIST", "name": null, "ofType": {"kind": "NON_NULL", "name": null, "ofType": {"kind": "OBJECT", "name": "Token", "ofType": null}}}}}
    ]},
    {"kind": "SCALAR", "name": "String", "fields": null}
  ]
}`

func TestSchemaDecodeAndLookup(t *testing.T) {
	var s Schema
	if err := json.Unmarshal([]byte(sampleSchemaJSON), &s); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	names, err := s.QueryNames()
	if err != nil {
		t.Fatalf("QueryNames() error = %v", err)
	}
	if len(names) != 2 || names[0] != "token" || names[1] != "tokens" {
		t.Errorf("QueryNames() = %v, want [token tokens]", names)
	}

	fields, _ := s.QueryFields()
	inner, err := fields[1].Type.Unwrap(3)
	if err != nil {
		t.Fatalf("Unwrap(3) error = %v", err)
	}
	if inner.Name == nil || *inner.Name != "Token" {
		t.Fatalf("Unwrap(3) = %+v, want Token", inner)
	}

	obj, ok := s.ObjectType("Token")
	if !ok {
		t.Fatal("ObjectType(Token) not found")
	}
	if got := DescribeType(obj.Fields[0].Type, DescribeOptions{IgnoreNonNulls: true}); got != "ID" {
		t.Errorf("id type = %q, want ID", got)
	}

	if _, ok := s.ObjectType("Query"); ok {
		t.Error("ObjectType(Query) should be excluded")
	}
	if _, ok := s.ObjectType("String"); ok {
		t.Error("ObjectType(String) should not match a scalar")
	}
}

func TestUnwrapTooShallow(t *testing.T) {
	ref := NonNull(Named(KindObject, "Token"))
	if _, err := ref.Unwrap(3); !errors.Is(err, ErrShallowType) {
		t.Errorf("Unwrap(3) error = %v, want ErrShallowType", err)
	}
}

func TestQueryFieldsMissing(t *testing.T) {
	s := Schema{Types: []FullType{{Kind: KindObject, Name: "Token"}}}
	if _, err := s.QueryFields(); !errors.Is(err, ErrNoQueryType) {
		t.Errorf("QueryFields() error = %v, want ErrNoQueryType", err)
	}
}

func TestBuilder(t *testing.T) {
	s := NewBuilder().
		Object("Pool", NewField("id", NonNull(Scalar("ID"))), NewField("fee", Scalar("BigInt"))).
		Root("pools", ListOf("Pool")).
		Root("pool", Object("Pool")).
		Build()

	names, err := s.QueryNames()
	if err != nil {
		t.Fatalf("QueryNames() error = %v", err)
	}
	if len(names) != 2 || names[0] != "pools" || names[1] != "pool" {
		t.Errorf("QueryNames() = %v, want declaration order", names)
	}
	if got := DescribeType(ListOf("Pool"), DescribeOptions{}); got != "non_null list non_null Pool" {
		t.Errorf("ListOf rendering = %q", got)
	}
	if _, ok := s.ObjectType("Pool"); !ok {
		t.Error("ObjectType(Pool) not found")
	}
}
