// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/jaxnet/headermmr/database/dbtest"
)

func collect(t *testing.T, src BlockSource, from uint64) ([]Block, error) {
	out := make(chan Block, 1024)
	err := src.Blocks(context.Background(), from, out)
	close(out)

	var blocks []Block
	for block := range out {
		blocks = append(blocks, block)
	}
	return blocks, err
}

func TestCSVSource(t *testing.T) {
	dir, err := os.MkdirTemp("", "indexer")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "blocks.csv")
	blocks := chain(0, 9)
	shuffled := append([]Block{blocks[5], blocks[5]}, blocks...)
	require.NoError(t, SaveBlocks(path, shuffled))

	got, err := collect(t, NewCSVSource(path), 3)
	require.NoError(t, err)
	assert.Equal(t, blocks[3:], got)

	conflicting := append(chain(0, 2), Block{Number: 1, Hash: dbtest.HashOf(77)})
	require.NoError(t, SaveBlocks(path, conflicting))
	_, err = collect(t, NewCSVSource(path), 0)
	assert.Error(t, err)

	_, err = collect(t, NewCSVSource(filepath.Join(dir, "missing.csv")), 0)
	assert.Error(t, err)
}

func TestCSVSourceFormat(t *testing.T) {
	dir, err := os.MkdirTemp("", "indexer")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "blocks.csv")
	body := "number,hash\n" +
		"1,0x0000000000000000000000000000000000000000000000000000000000000002\n" +
		"0,0x01\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	got, err := collect(t, NewCSVSource(path), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(0), got[0].Number)
	assert.Equal(t, byte(0x01), got[0].Hash[31])
	assert.Equal(t, byte(0x02), got[1].Hash[31])
}

// fakeNode answers chain_getBlockHash for numbers below height.
func fakeNode(height uint64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64   `json:"id"`
			Method string   `json:"method"`
			Params []uint64 `json:"params"`
		}
		data, err := io.ReadAll(r.Body)
		if err == nil {
			err = json.Unmarshal(data, &req)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		switch {
		case req.Method != "chain_getBlockHash":
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
		case len(req.Params) == 1 && req.Params[0] < height:
			hash := dbtest.HashOf(req.Params[0])
			resp["result"] = hash.String()
		default:
			resp["result"] = nil
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestRPCSource(t *testing.T) {
	server := fakeNode(8)
	defer server.Close()

	src := NewRPCSource(server.URL, false, time.Millisecond)
	got, err := collect(t, src, 5)
	require.NoError(t, err)
	assert.Equal(t, chain(5, 7), got)

	hash, ok, err := src.BlockHash(context.Background(), 100)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, [32]byte{}, [32]byte(hash))
}

func TestRPCSourceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"boom"}}`))
	}))
	defer server.Close()

	_, err := collect(t, NewRPCSource(server.URL, false, 0), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRPCSourceFollow(t *testing.T) {
	server := fakeNode(2)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src := NewRPCSource(server.URL, true, time.Millisecond)
	out := make(chan Block)
	done := make(chan error, 1)
	go func() { done <- src.Blocks(ctx, 0, out) }()

	assert.Equal(t, uint64(0), (<-out).Number)
	assert.Equal(t, uint64(1), (<-out).Number)

	// the source polls until the node learns block 2
	select {
	case <-out:
		t.Fatal("unexpected block")
	case <-time.After(20 * time.Millisecond):
	}
	cancel()
	err := <-done
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
