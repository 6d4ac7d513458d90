// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package publisher sets transfer statistics as fields of a redis hash.
package publisher

import (
	"fmt"
	"sync"

	"github.com/garyburd/redigo/redis"
)

// Hash is the default redis hash.
const Hash = "hwchar"

type Publisher struct {
	mu   sync.Mutex
	conn redis.Conn
	hash string
}

// Dial connects to the redis server at addr, a "host:port" or unix socket
// path.
func Dial(addr, hash string) (*Publisher, error) {
	network := "tcp"
	if len(addr) > 0 && addr[0] == '/' {
		network = "unix"
	}
	conn, err := redis.Dial(network, addr)
	if err != nil {
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return New(conn, hash), nil
}

func New(conn redis.Conn, hash string) *Publisher {
	if len(hash) == 0 {
		hash = Hash
	}
	return &Publisher{conn: conn, hash: hash}
}

// Publish sets field key of the hash to value.
func (p *Publisher) Publish(key string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.conn.Do("HSET", p.hash, key, value)
	return err
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.Close()
}
