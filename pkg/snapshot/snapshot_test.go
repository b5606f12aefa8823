package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-crosscheck/pkg/client"
)

func init() {
	// key derivation cost is irrelevant to the tests
	pbkdf2Iterations = 1000
}

type countingQuerier struct {
	calls int
}

func (c *countingQuerier) Query(ctx context.Context, url, query string) (*client.Response, error) {
	c.calls++
	if url == "http://down" {
		return nil, &client.TransportError{URL: url, Err: errors.New("connection refused")}
	}
	data, _ := json.Marshal(map[string]any{"echo": query, "from": url})
	return &client.Response{Data: data}, nil
}

func TestRecordThenReplay(t *testing.T) {
	ctx := context.Background()
	upstream := &countingQuerier{}
	snap := New()
	rec := NewRecorder(upstream, snap)

	first, err := rec.Query(ctx, "http://ref", "{ a }")
	require.NoError(t, err)
	_, err = rec.Query(ctx, "http://smp", "{ a }")
	require.NoError(t, err)
	_, err = rec.Query(ctx, "http://down", "{ a }")
	require.Error(t, err)
	assert.Equal(t, 2, snap.Len())

	store := &FileStore{Path: filepath.Join(t.TempDir(), "run", "snap.bin")}
	require.NoError(t, snap.Save(ctx, store, ""))

	loaded, err := Load(ctx, store, "")
	require.NoError(t, err)
	replay := NewReplayer(loaded)

	got, err := replay.Query(ctx, "http://ref", "{ a }")
	require.NoError(t, err)
	assert.JSONEq(t, string(first.Data), string(got.Data))
	assert.Equal(t, 3, upstream.calls)

	_, err = replay.Query(ctx, "http://ref", "{ b }")
	assert.ErrorIs(t, err, ErrNotRecorded)
	assert.False(t, client.IsTransportError(err))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = replay.Query(cancelled, "http://ref", "{ a }")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncodeIsDeterministic(t *testing.T) {
	a, b := New(), New()
	for _, q := range []string{"{ x }", "{ y }", "{ z }"} {
		a.Put("u", q, &client.Response{Data: json.RawMessage(`{"v":1}`)})
	}
	for _, q := range []string{"{ z }", "{ x }", "{ y }"} {
		b.Put("u", q, &client.Response{Data: json.RawMessage(`{"v":1}`)})
	}
	ea, err := a.Encode("")
	require.NoError(t, err)
	eb, err := b.Encode("")
	require.NoError(t, err)
	assert.Equal(t, ea, eb)

	queries := a.Queries()
	require.Len(t, queries, 3)
	assert.Equal(t, "u", queries[0].URL)
}

func TestSealedSnapshot(t *testing.T) {
	snap := New()
	snap.Put("u", "{ q }", &client.Response{Errors: []client.GraphQLError{{Message: "boom"}}})

	data, err := snap.Encode("secret")
	require.NoError(t, err)
	assert.NotContains(t, string(data), "boom")

	_, err = Decode(data, "")
	assert.Error(t, err)
	_, err = Decode(data, "wrong")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	back, err := Decode(data, "secret")
	require.NoError(t, err)
	resp, ok := back.Get("u", "{ q }")
	require.True(t, ok)
	assert.Equal(t, "boom", resp.Errors[0].Message)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("hello world"), append([]byte(magic), 9), append([]byte(magic), formatPlain, 1, 2, 3)} {
		_, err := Decode(data, "")
		assert.Error(t, err)
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("a", "b"), Key("a", "b"))
	assert.NotEqual(t, Key("a", "b"), Key("a", "c"))
	assert.NotEqual(t, Key("ab", ""), Key("a", "b"))
	assert.Len(t, Key("a", "b"), 64)
}

func TestFileStoreMissing(t *testing.T) {
	_, err := (&FileStore{Path: filepath.Join(t.TempDir(), "nope")}).Read(context.Background())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}}
	store := &S3Store{Client: fake, Bucket: "runs", Key: "2026/snap.bin"}
	assert.Equal(t, "s3://runs/2026/snap.bin", store.String())

	snap := New()
	snap.Put("u", "{ q }", &client.Response{Data: json.RawMessage(`{}`)})
	require.NoError(t, snap.Save(ctx, store, ""))
	assert.Contains(t, fake.objects, "runs/2026/snap.bin")

	loaded, err := Load(ctx, store, "")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}

func TestParseS3Location(t *testing.T) {
	bucket, key, err := ParseS3Location("s3://b/dir/k")
	require.NoError(t, err)
	assert.Equal(t, "b", bucket)
	assert.Equal(t, "dir/k", key)

	for _, bad := range []string{"b/k", "s3://", "s3://b", "s3:///k"} {
		_, _, err := ParseS3Location(bad)
		assert.Error(t, err, bad)
	}
}

func TestOpen(t *testing.T) {
	store, err := Open(context.Background(), "snap.bin", S3Options{})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	_, err = Open(context.Background(), "", S3Options{})
	assert.Error(t, err)
}
