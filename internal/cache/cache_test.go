package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New(true)
	c.Set("k", []byte("v"), time.Minute)

	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, ok)
	}
}

func TestMissingKey(t *testing.T) {
	c := New(true)
	if _, ok := c.Get("nope"); ok {
		t.Fatal("unexpected hit for a missing key")
	}
}

func TestExpiry(t *testing.T) {
	c := New(true)
	c.Set("k", []byte("v"), -time.Second)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry must miss")
	}
}

func TestOverwrite(t *testing.T) {
	c := New(true)
	c.Set("k", []byte("old"), time.Minute)
	c.Set("k", []byte("new"), time.Minute)

	got, _ := c.Get("k")
	if string(got) != "new" {
		t.Fatalf("Get = %q, want latest value", got)
	}
}

func TestDisabledCacheIsNoOp(t *testing.T) {
	c := New(false)
	c.Set("k", []byte("v"), time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatal("disabled cache must never hit")
	}
}
