package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"gaterepo/internal/domain"
)

// mainnetNetworkID is the only network snapshots are computed against.
const mainnetNetworkID = "1"

type client struct {
	http     *http.Client
	scoreURL string
}

// NewClient returns a BalanceOracle that measures an address's balance as of
// the gate's pinned block via a snapshot score API using the erc20-balance-of
// voting strategy. An address absent from the score set has balance 0.
func NewClient(httpClient *http.Client, scoreURL string) domain.BalanceOracle {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if scoreURL == "" {
		scoreURL = "https://score.snapshot.org"
	}
	return &client{http: httpClient, scoreURL: scoreURL}
}

type scoreRequest struct {
	Params scoreParams `json:"params"`
}

type scoreParams struct {
	Network    string     `json:"network"`
	Snapshot   int64      `json:"snapshot"`
	Strategies []strategy `json:"strategies"`
	Addresses  []string   `json:"addresses"`
}

type strategy struct {
	Name   string         `json:"name"`
	Params strategyParams `json:"params"`
}

type strategyParams struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol,omitempty"`
	Decimals int    `json:"decimals"`
}

type scoreResponse struct {
	Result struct {
		Scores []map[string]float64 `json:"scores"`
	} `json:"result"`
}

func (c *client) Balance(ctx context.Context, gate *domain.Gate, address string) (*big.Float, error) {
	body, err := json.Marshal(scoreRequest{
		Params: scoreParams{
			Network:  mainnetNetworkID,
			Snapshot: gate.BlockNumber,
			Strategies: []strategy{{
				Name: "erc20-balance-of",
				Params: strategyParams{
					Address:  gate.Contract,
					Symbol:   gate.ContractName,
					Decimals: gate.ContractDecimals,
				},
			}},
			Addresses: []string{address},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal score request: %v", domain.ErrBalanceCheck, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.scoreURL+"/api/scores", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create score request: %v", domain.ErrBalanceCheck, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch scores: %v", domain.ErrBalanceCheck, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: score api returned status %d", domain.ErrBalanceCheck, resp.StatusCode)
	}

	var data scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode score response: %v", domain.ErrBalanceCheck, err)
	}

	// Score keys come back in the API's preferred casing; match loosely.
	score := 0.0
	for _, scores := range data.Result.Scores {
		for addr, v := range scores {
			if strings.EqualFold(addr, address) {
				score += v
			}
		}
	}
	return new(big.Float).SetPrec(domain.BalancePrec).SetFloat64(score), nil
}
