package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/gowirek/deferred/deferred"
	"github.com/gowirek/deferred/executor"
	"github.com/gowirek/deferred/fetch"
)

func TestClient_Get_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c := fetch.New(srv.Client(), executor.NewImmediate(deferred.QoSDefault))
	out := c.Get(context.Background(), srv.URL)
	res := out.Get()
	resp := res.TryGet()

	if diff := cmp.Diff(http.StatusOK, resp.StatusCode); diff != "" {
		t.Error("wrong status code\n" + diff)
	}
	if diff := cmp.Diff("hello", string(resp.Body)); diff != "" {
		t.Error("wrong body\n" + diff)
	}
}

func TestClient_Get_NonSuccessStatusIsAFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := fetch.New(srv.Client(), executor.NewImmediate(deferred.QoSDefault))
	out := c.Get(context.Background(), srv.URL)
	res := out.Get()
	if !res.IsFailure() {
		t.Fatalf("expected a 404 response to be a failure")
	}
	statusErr, ok := res.Error().(fetch.StatusError)
	if !ok {
		t.Fatalf("wrong error type %T; want fetch.StatusError", res.Error())
	}
	if diff := cmp.Diff(http.StatusNotFound, statusErr.StatusCode); diff != "" {
		t.Error("wrong status code in error\n" + diff)
	}
}

func TestClient_Get_TimesOutAgainstASlowServer(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := fetch.New(srv.Client(), executor.NewImmediate(deferred.QoSDefault))
	out := c.Get(context.Background(), srv.URL).Timeout(50*time.Millisecond, "slow server")
	res := out.Get()
	if _, ok := res.Error().(deferred.TimedOutError); !ok {
		t.Fatalf("wrong error type %T; want TimedOutError", res.Error())
	}
}

func TestClient_Get_RecoversFromTransportFailure(t *testing.T) {
	c := fetch.New(nil, executor.NewImmediate(deferred.QoSDefault))
	out := c.Get(context.Background(), "http://127.0.0.1:1/unreachable").Recover(func(error) *deferred.Deferred[*fetch.Response] {
		return deferred.ResolvedValue[*fetch.Response](executor.NewImmediate(deferred.QoSDefault), &fetch.Response{StatusCode: http.StatusOK})
	})
	res := out.Get()
	if diff := cmp.Diff(http.StatusOK, res.TryGet().StatusCode); diff != "" {
		t.Error("recover did not produce the fallback response\n" + diff)
	}
}

func TestClient_Get_MapsDecodedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("42"))
	}))
	defer srv.Close()

	c := fetch.New(srv.Client(), executor.NewImmediate(deferred.QoSDefault))
	out := deferred.Map(c.Get(context.Background(), srv.URL), func(resp *fetch.Response) string {
		return string(resp.Body)
	})
	res := out.Get()
	if diff := cmp.Diff("42", res.TryGet()); diff != "" {
		t.Error("wrong mapped value\n" + diff)
	}
}
