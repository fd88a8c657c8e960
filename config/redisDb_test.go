package config

import "testing"

func TestConnectRedisSkippedWithoutAddress(t *testing.T) {
	t.Setenv("REDIS_ADDRESS", "")

	ConnectRedisWithRetry()

	if GetRedisDB() != nil {
		t.Fatalf("redis client should stay nil without REDIS_ADDRESS")
	}
	if GetRedisLock() != nil {
		t.Fatalf("lock client should stay nil without REDIS_ADDRESS")
	}

	// Helpers no-op against the nil client.
	var dest map[string]any
	exists, err := GetRedisObject("some-key", &dest)
	if err != nil || exists {
		t.Fatalf("nil-client get: exists=%t err=%v", exists, err)
	}
	if err := SetRedisObject("some-key", map[string]string{"a": "b"}, 0); err != nil {
		t.Fatalf("nil-client set: %v", err)
	}
	if err := RemoveRedisKey("some-key"); err != nil {
		t.Fatalf("nil-client del: %v", err)
	}
}
