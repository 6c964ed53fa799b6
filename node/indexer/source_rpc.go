// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gitlab.com/jaxnet/headermmr/types/chainhash"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultPollInterval is the delay between two polls for a block the node does not have yet.
const DefaultPollInterval = 6 * time.Second

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	ID     uint64              `json:"id"`
	Result jsoniter.RawMessage `json:"result"`
	Error  *rpcError           `json:"error"`
}

// RPCSource asks a node for block hashes by number with chain_getBlockHash.
//
// When Follow is set the source waits PollInterval whenever the node does not
// know the next block yet, otherwise it stops at the first unknown number.
type RPCSource struct {
	URL          string
	Follow       bool
	PollInterval time.Duration
	Client       *http.Client

	requestID uint64
}

func NewRPCSource(url string, follow bool, pollInterval time.Duration) *RPCSource {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &RPCSource{
		URL:          url,
		Follow:       follow,
		PollInterval: pollInterval,
		Client:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (src *RPCSource) Blocks(ctx context.Context, from uint64, out chan<- Block) error {
	for number := from; ; {
		hash, ok, err := src.BlockHash(ctx, number)
		if err != nil {
			return err
		}

		if !ok {
			if !src.Follow {
				return nil
			}
			log.Trace().Uint64("number", number).Msg("block not available yet")
			select {
			case <-time.After(src.PollInterval):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := send(ctx, out, Block{Number: number, Hash: hash}); err != nil {
			return err
		}
		number++
	}
}

// BlockHash returns the hash of block number.  ok is false when the node does
// not have the block.
func (src *RPCSource) BlockHash(ctx context.Context, number uint64) (hash chainhash.Hash, ok bool, err error) {
	raw, err := src.call(ctx, "chain_getBlockHash", number)
	if err != nil {
		return hash, false, errors.Wrapf(err, "chain_getBlockHash(%d)", number)
	}

	if len(raw) == 0 {
		return hash, false, nil
	}

	var text *string
	if err := json.Unmarshal(raw, &text); err != nil {
		return hash, false, errors.Wrapf(err, "chain_getBlockHash(%d): bad result", number)
	}
	if text == nil {
		return hash, false, nil
	}

	if err := chainhash.Decode(&hash, *text); err != nil {
		return hash, false, errors.Wrapf(err, "chain_getBlockHash(%d): bad hash", number)
	}
	return hash, true, nil
}

func (src *RPCSource) call(ctx context.Context, method string, params ...interface{}) (jsoniter.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      atomic.AddUint64(&src.requestID, 1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, src.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := src.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status %s", resp.Status)
	}

	var res rpcResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.Wrap(err, "unable to decode response")
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return res.Result, nil
}
