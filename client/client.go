// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package client provides an HTTP and websocket client of the mmrledger API.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	apimmr "github.com/vechain/mmrledger/api/mmr"
	apistaking "github.com/vechain/mmrledger/api/staking"
	"github.com/vechain/mmrledger/mmr"
	"github.com/vechain/mmrledger/thor"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNot200Status = errors.New("not 200 status code")
)

// Client talks to a running mmrledger API.
type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: strings.TrimSuffix(url, "/"),
		c:   c,
	}
}

// Root retrieves the current root.
func (c *Client) Root() (*apimmr.Root, error) {
	var root apimmr.Root
	if err := c.get("/mmr/root", &root); err != nil {
		return nil, fmt.Errorf("unable to retrieve root - %w", err)
	}
	return &root, nil
}

// RootAt retrieves the root the accumulator had with leafCount leaves.
func (c *Client) RootAt(leafCount uint64) (*apimmr.Root, error) {
	var root apimmr.Root
	if err := c.get("/mmr/root?leafCount="+strconv.FormatUint(leafCount, 10), &root); err != nil {
		return nil, fmt.Errorf("unable to retrieve root - %w", err)
	}
	return &root, nil
}

// LeafCount retrieves the number of leaves.
func (c *Client) LeafCount() (uint64, error) {
	var res struct {
		LeafCount uint64 `json:"leafCount"`
	}
	if err := c.get("/mmr/leaf-count", &res); err != nil {
		return 0, fmt.Errorf("unable to retrieve leaf count - %w", err)
	}
	return res.LeafCount, nil
}

// Leaf retrieves a stored leaf.
func (c *Client) Leaf(index uint64) (*apimmr.Leaf, error) {
	var leaf apimmr.Leaf
	if err := c.get("/mmr/leaves/"+strconv.FormatUint(index, 10), &leaf); err != nil {
		return nil, fmt.Errorf("unable to retrieve leaf - %w", err)
	}
	return &leaf, nil
}

// Append appends opaque leaves.
func (c *Client) Append(leaves ...[]byte) (*apimmr.AppendResponse, error) {
	req := &apimmr.AppendRequest{Leaves: make([]hexutil.Bytes, 0, len(leaves))}
	for _, l := range leaves {
		req.Leaves = append(req.Leaves, l)
	}
	var res apimmr.AppendResponse
	if err := c.post("/mmr/leaves", req, &res); err != nil {
		return nil, fmt.Errorf("unable to append leaves - %w", err)
	}
	return &res, nil
}

// Proof requests a proof of the leaves at indices. A nil bestKnown proves against the current root.
func (c *Client) Proof(indices []uint64, bestKnown *uint64) (*apimmr.ProofResponse, error) {
	var res apimmr.ProofResponse
	if err := c.post("/mmr/proof", &apimmr.ProofRequest{Indices: indices, BestKnownLeafCount: bestKnown}, &res); err != nil {
		return nil, fmt.Errorf("unable to request proof - %w", err)
	}
	return &res, nil
}

// Verify verifies a leaf proof against the root stored by the server.
func (c *Client) Verify(leaves []*apimmr.Leaf, proof *mmr.LeafProof) (*apimmr.VerifyResponse, error) {
	var res apimmr.VerifyResponse
	if err := c.post("/mmr/proof/verify", &apimmr.VerifyRequest{Leaves: leaves, Proof: proof}, &res); err != nil {
		return nil, fmt.Errorf("unable to verify proof - %w", err)
	}
	return &res, nil
}

// VerifyStateless verifies a leaf proof against root.
func (c *Client) VerifyStateless(root thor.Bytes32, leaves []*apimmr.Leaf, proof *mmr.LeafProof) (*apimmr.VerifyResponse, error) {
	var res apimmr.VerifyResponse
	if err := c.post("/mmr/proof/verify-stateless", &apimmr.VerifyStatelessRequest{Root: root, Leaves: leaves, Proof: proof}, &res); err != nil {
		return nil, fmt.Errorf("unable to verify proof - %w", err)
	}
	return &res, nil
}

// Ancestry requests a proof that the accumulator at prevLeafCount is a prefix of the current one.
func (c *Client) Ancestry(prevLeafCount uint64) (*mmr.AncestryProof, error) {
	var proof mmr.AncestryProof
	if err := c.get("/mmr/ancestry?prevLeafCount="+strconv.FormatUint(prevLeafCount, 10), &proof); err != nil {
		return nil, fmt.Errorf("unable to request ancestry proof - %w", err)
	}
	return &proof, nil
}

// VerifyAncestry verifies an ancestry proof between two roots.
func (c *Client) VerifyAncestry(prevRoot, root thor.Bytes32, proof *mmr.AncestryProof) (*apimmr.VerifyResponse, error) {
	var res apimmr.VerifyResponse
	if err := c.post("/mmr/ancestry/verify", &apimmr.AncestryVerifyRequest{PrevRoot: prevRoot, Root: root, Proof: proof}, &res); err != nil {
		return nil, fmt.Errorf("unable to verify ancestry proof - %w", err)
	}
	return &res, nil
}

// Ledger retrieves the ledger of a stash, or of a controller.
func (c *Client) Ledger(account thor.Address, byController bool) (*apistaking.Ledger, error) {
	path := "/staking/ledgers/" + account.String()
	if byController {
		path += "?by=controller"
	}
	var ledger apistaking.Ledger
	if err := c.get(path, &ledger); err != nil {
		return nil, fmt.Errorf("unable to retrieve ledger - %w", err)
	}
	return &ledger, nil
}

func (c *Client) get(path string, out any) error {
	body, err := c.httpRequest(http.MethodGet, c.url+path, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *Client) post(path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("unable to marshal payload - %w", err)
	}
	body, err := c.httpRequest(http.MethodPost, c.url+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *Client) httpRequest(method, url string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return responseBody, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s - %w", bytes.TrimSpace(responseBody), ErrNotFound)
	}
	return nil, &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(responseBody))}
}

// StatusError is returned for responses other than 200 and 404.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http error - Status Code %d - %s", e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool { return target == ErrNot200Status }

// wsURL turns an http(s) URL into a ws(s) one.
func wsURL(raw, path string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return u.String(), nil
}
