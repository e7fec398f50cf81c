package builtin

import (
	"context"
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/theapemachine/jsonrpc-go/pkg/registry"
	"github.com/theapemachine/jsonrpc-go/pkg/stores"
)

func TestKVMethods(t *testing.T) {
	Convey("Given a kv pack over a fresh store", t, func() {
		store := stores.NewInMemoryKVStore()
		Reset(func() { store.Close() })

		reg := registry.New().RegisterProvider(NewKV(store))
		ctx := context.Background()

		set, _ := reg.Lookup("kv.set")
		get, _ := reg.Lookup("kv.get")
		del, _ := reg.Lookup("kv.delete")
		keys, _ := reg.Lookup("kv.keys")

		Convey("Set then get returns the stored JSON untouched", func() {
			ack, rpcErr := set(ctx, json.RawMessage(`{"key":"user","value":{"name":"ada"}}`))
			So(rpcErr, ShouldBeNil)
			So(ack, ShouldEqual, true)

			value, rpcErr := get(ctx, json.RawMessage(`["user"]`))
			So(rpcErr, ShouldBeNil)
			So(string(value.(json.RawMessage)), ShouldEqual, `{"name":"ada"}`)
		})

		Convey("Get on an unknown key is a server error", func() {
			_, rpcErr := get(ctx, json.RawMessage(`["ghost"]`))
			So(rpcErr, ShouldNotBeNil)
			So(rpcErr.Code, ShouldEqual, -32000)
		})

		Convey("Keys lists live keys sorted", func() {
			_, _ = set(ctx, json.RawMessage(`["b",1]`))
			_, _ = set(ctx, json.RawMessage(`["a",2]`))

			names, rpcErr := keys(ctx, nil)
			So(rpcErr, ShouldBeNil)
			So(names, ShouldResemble, []string{"a", "b"})
		})

		Convey("Delete reports whether the key was present", func() {
			_, _ = set(ctx, json.RawMessage(`["k",1]`))

			gone, rpcErr := del(ctx, json.RawMessage(`["k"]`))
			So(rpcErr, ShouldBeNil)
			So(gone, ShouldEqual, true)

			gone, _ = del(ctx, json.RawMessage(`["k"]`))
			So(gone, ShouldEqual, false)
		})
	})
}
