package builtin

import (
	"encoding/json"
	"time"

	"github.com/theapemachine/jsonrpc-go/pkg/errors"
	"github.com/theapemachine/jsonrpc-go/pkg/registry"
	"github.com/theapemachine/jsonrpc-go/pkg/stores"
)

/*
KV exposes a shared key/value area over a stores.KVStore. Values are
arbitrary JSON; kv.set takes an optional ttl in seconds, zero keeps the
value until kv.delete.
*/
type KV struct {
	store stores.KVStore
}

func NewKV(store stores.KVStore) *KV {
	return &KV{store: store}
}

func (kv *KV) Methods() []registry.Method {
	return []registry.Method{
		{Name: "kv.get", Handler: registry.Func(kv.get, "key")},
		{Name: "kv.set", Handler: registry.Func(kv.set, "key", "value", "ttl")},
		{Name: "kv.delete", Handler: registry.Func(kv.delete, "key")},
		{Name: "kv.keys", Handler: registry.Func(kv.keys)},
	}
}

func (kv *KV) get(key string) (json.RawMessage, error) {
	value, ok := kv.store.Get(key)
	if !ok {
		return nil, errors.ErrServer.WithMessagef("unknown key %q", key)
	}

	return value, nil
}

func (kv *KV) set(key string, value json.RawMessage, ttl int64) bool {
	kv.store.Set(key, value, time.Duration(ttl)*time.Second)
	return true
}

func (kv *KV) delete(key string) bool {
	return kv.store.Delete(key)
}

func (kv *KV) keys() []string {
	return kv.store.Keys()
}
