package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
)

func TestRedisCache_Get_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, "test:")

	mock.ExpectHGet("test:"+Key("Hello", "es"), "value").SetVal("Hola")

	val, ok, err := cache.Get(context.Background(), "Hello", "es")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || val != "Hola" {
		t.Errorf("Get() = %q, %v; want Hola, true", val, ok)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_Get_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, "test:")

	mock.ExpectHGet("test:"+Key("Hello", "es"), "value").RedisNil()

	val, ok, err := cache.Get(context.Background(), "Hello", "es")
	if err != nil {
		t.Fatalf("a miss must not be an error: %v", err)
	}
	if ok || val != "" {
		t.Errorf("Get() = %q, %v; want a miss", val, ok)
	}
}

func TestRedisCache_Get_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, "test:")

	mock.ExpectHGet("test:"+Key("Hello", "es"), "value").SetErr(errors.New("connection refused"))

	_, ok, err := cache.Get(context.Background(), "Hello", "es")
	if err == nil {
		t.Fatal("Expected backend error to be returned")
	}
	if ok {
		t.Error("Expected no hit on error")
	}
}

func TestRedisCache_Set_StoresSourceText(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, "test:")

	mock.ExpectHSet("test:"+Key("Hello", "es"), "text", "Hello", "lang", "es", "value", "Hola").SetVal(3)

	if err := cache.Set(context.Background(), "Hello", "es", "Hola"); err != nil {
		t.Errorf("Set failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_DefaultPrefix(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, "")

	mock.ExpectHGet(DefaultKeyPrefix+Key("Hi", "de"), "value").SetVal("Hallo")

	val, ok, err := cache.Get(context.Background(), "Hi", "de")
	if err != nil || !ok || val != "Hallo" {
		t.Errorf("Expected 'Hallo', got %q (ok=%v, err=%v)", val, ok, err)
	}
}

func TestRedisCache_Entries(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, "test:")
	kEs := "test:" + Key("Hello", "es")
	kDe := "test:" + Key("Hello", "de")
	kJunk := "test:stray"
	kNumeral := "test:numeral:" + Key("42", "hi")

	mock.ExpectScan(0, "test:*", scanCount).SetVal([]string{kEs, kJunk, kNumeral}, 17)
	mock.ExpectHGetAll(kEs).SetVal(map[string]string{"text": "Hello", "lang": "es", "value": "Hola"})
	mock.ExpectHGetAll(kJunk).SetVal(map[string]string{})
	mock.ExpectHGetAll(kNumeral).SetVal(map[string]string{"text": "42", "lang": "hi", "value": "४२"})
	mock.ExpectScan(17, "test:*", scanCount).SetVal([]string{kDe}, 0)
	mock.ExpectHGetAll(kDe).SetVal(map[string]string{"text": "Hello", "lang": "de", "value": "Hallo"})

	entries, err := cache.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	want := []Entry{
		{Text: "Hello", Lang: "de", Value: "Hallo"},
		{Text: "Hello", Lang: "es", Value: "Hola"},
	}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entries[%d] = %+v, want %+v", i, entries[i], want[i])
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_EntriesScanError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, "test:")
	mock.ExpectScan(0, "test:*", scanCount).SetErr(errors.New("connection reset"))

	if _, err := cache.Entries(context.Background()); err == nil {
		t.Fatal("expected scan error")
	}
}

func TestRedisCache_Ping(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, "test:")

	mock.ExpectPing().SetVal("PONG")

	if err := cache.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
