package memcacheiface

import "github.com/bradfitz/gomemcache/memcache"

// Client defines the Memcache client operations needed by the stats sink.
// This allows for mocking the Memcache client in unit tests.
type Client interface {
	Set(item *memcache.Item) error
}
