// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package client provides a typed HTTP client for the ledger REST API.
// Coded failures returned by the server are surfaced as errs coded errors,
// so callers branch on errs.HasCode exactly as they would in-process.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/adranet/adrd/adr"
	"github.com/adranet/adrd/cert"
	"github.com/adranet/adrd/errs"
	"github.com/adranet/adrd/eventdb"
	"github.com/adranet/adrd/staking"
)

// Client talks to one ledger node.
type Client struct {
	url string
	c   *http.Client
}

// New creates a client for the node at url.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

// NewWithHTTP creates a client using the given http client.
func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: url,
		c:   c,
	}
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

	if resp.StatusCode != http.StatusOK {
		// coded failures round-trip as {code, message}
		var coded struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(responseBody, &coded) == nil && coded.Code != "" {
			return nil, errs.New(errs.Code(coded.Code), "%s", coded.Message)
		}
		return nil, fmt.Errorf("http error - status %d - %s", resp.StatusCode, responseBody)
	}
	return responseBody, nil
}

func (c *Client) httpGET(path string, v interface{}) error {
	body, err := c.httpRequest(http.MethodGet, c.url+path, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func (c *Client) httpPOST(path string, payload, v interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("unable to marshal payload - %w", err)
	}
	body, err := c.httpRequest(http.MethodPost, c.url+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return json.Unmarshal(body, v)
}

// Stake locks amount of the payment token for the chosen period.
func (c *Client) Stake(staker adr.Address, amount uint64, period staking.Period) (*staking.StakeSummary, error) {
	var summary staking.StakeSummary
	err := c.httpPOST("/staking/stakes", map[string]interface{}{
		"staker": staker,
		"amount": amount,
		"period": period,
	}, &summary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Unstake claims the staker's matured principal plus reward.
func (c *Client) Unstake(staker adr.Address) (*staking.StakeSummary, error) {
	var summary staking.StakeSummary
	err := c.httpPOST("/staking/unstake", map[string]interface{}{"staker": staker}, &summary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// StakeSummary retrieves the staker's current lock view.
func (c *Client) StakeSummary(staker adr.Address) (*staking.StakeSummary, error) {
	var summary staking.StakeSummary
	if err := c.httpGET("/staking/stakes/"+staker.String(), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Config retrieves the global configuration view.
func (c *Client) Config() (*staking.ConfigSummary, error) {
	var cfg staking.ConfigSummary
	if err := c.httpGET("/staking/config", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Configure sets the staking-enabled flag and base reward rate.
func (c *Client) Configure(caller adr.Address, enabled bool, rewardRate uint64) (*staking.ConfigSummary, error) {
	var cfg staking.ConfigSummary
	err := c.httpPOST("/admin/staking", map[string]interface{}{
		"caller":     caller,
		"enabled":    enabled,
		"rewardRate": rewardRate,
	}, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetEmergencyPause flips the emergency-pause flag.
func (c *Client) SetEmergencyPause(caller adr.Address, paused bool, reason string) (*staking.ConfigSummary, error) {
	var cfg staking.ConfigSummary
	err := c.httpPOST("/admin/pause", map[string]interface{}{
		"caller": caller,
		"paused": paused,
		"reason": reason,
	}, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TransferAdmin hands the admin role to newAdmin.
func (c *Client) TransferAdmin(caller, newAdmin adr.Address) (*staking.ConfigSummary, error) {
	var cfg staking.ConfigSummary
	err := c.httpPOST("/admin/transfer", map[string]interface{}{
		"caller":   caller,
		"newAdmin": newAdmin,
	}, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetMaxStake overwrites the per-call stake cap.
func (c *Client) SetMaxStake(caller adr.Address, maxAmount uint64) (*staking.ConfigSummary, error) {
	var cfg staking.ConfigSummary
	err := c.httpPOST("/admin/maxstake", map[string]interface{}{
		"caller":    caller,
		"maxAmount": maxAmount,
	}, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetPaymentToken configures the settlement mint.
func (c *Client) SetPaymentToken(caller, mint adr.Address) (*staking.ConfigSummary, error) {
	var cfg staking.ConfigSummary
	err := c.httpPOST("/admin/paymenttoken", map[string]interface{}{
		"caller": caller,
		"mint":   mint,
	}, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetRewardReserve designates the reward reserve account.
func (c *Client) SetRewardReserve(caller, account adr.Address) (*staking.ConfigSummary, error) {
	var cfg staking.ConfigSummary
	err := c.httpPOST("/admin/reserve", map[string]interface{}{
		"caller":  caller,
		"account": account,
	}, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DepositRewardReserve moves amount from the admin into the reserve.
func (c *Client) DepositRewardReserve(caller adr.Address, amount uint64) (*staking.ConfigSummary, error) {
	var cfg staking.ConfigSummary
	err := c.httpPOST("/admin/reserve/deposits", map[string]interface{}{
		"caller": caller,
		"amount": amount,
	}, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Account is a token balance view.
type Account struct {
	Mint    adr.Address `json:"mint"`
	Holder  adr.Address `json:"holder"`
	Balance uint64      `json:"balance"`
}

// Transfer moves tokens under the sender's own authority.
func (c *Client) Transfer(mint, from, to adr.Address, amount uint64) (*Account, error) {
	var account Account
	err := c.httpPOST("/token/transfers", map[string]interface{}{
		"mint":   mint,
		"from":   from,
		"to":     to,
		"amount": amount,
	}, &account)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// TransferFrom moves tokens consuming spender's allowance.
func (c *Client) TransferFrom(mint, from, to, spender adr.Address, amount uint64) (*Account, error) {
	var account Account
	err := c.httpPOST("/token/transfers", map[string]interface{}{
		"mint":    mint,
		"from":    from,
		"to":      to,
		"spender": spender,
		"amount":  amount,
	}, &account)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Approve grants spender a delegated-spend allowance.
func (c *Client) Approve(mint, owner, spender adr.Address, amount uint64) (uint64, error) {
	var body struct {
		Allowance uint64 `json:"allowance"`
	}
	err := c.httpPOST("/token/approvals", map[string]interface{}{
		"mint":    mint,
		"owner":   owner,
		"spender": spender,
		"amount":  amount,
	}, &body)
	if err != nil {
		return 0, err
	}
	return body.Allowance, nil
}

// GetAccount retrieves the holder's balance for the given mint.
func (c *Client) GetAccount(mint, holder adr.Address) (*Account, error) {
	var account Account
	if err := c.httpGET("/token/accounts/"+mint.String()+"/"+holder.String(), &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// MintCertificate burns amount of the payment token and mints a certificate.
func (c *Client) MintCertificate(payer adr.Address, name, symbol, uri string, amount uint64) (*cert.Certificate, error) {
	var crt cert.Certificate
	err := c.httpPOST("/certs", map[string]interface{}{
		"payer":  payer,
		"name":   name,
		"symbol": symbol,
		"uri":    uri,
		"amount": amount,
	}, &crt)
	if err != nil {
		return nil, err
	}
	return &crt, nil
}

// GetCertificate retrieves the certificate with the given id.
func (c *Client) GetCertificate(id uint64) (*cert.Certificate, error) {
	var crt cert.Certificate
	if err := c.httpGET("/certs/"+strconv.FormatUint(id, 10), &crt); err != nil {
		return nil, err
	}
	return &crt, nil
}

// Collection is the certificate collection view.
type Collection struct {
	cert.Collection
	Count uint64 `json:"count"`
}

// GetCollection retrieves the certificate collection metadata.
func (c *Client) GetCollection() (*Collection, error) {
	var col Collection
	if err := c.httpGET("/certs/collection", &col); err != nil {
		return nil, err
	}
	return &col, nil
}

// EventsQuery selects events to retrieve. Zero values are omitted.
type EventsQuery struct {
	Type   string
	Actor  *adr.Address
	From   uint64
	To     uint64
	Order  eventdb.OrderType
	Offset uint64
	Limit  uint64
}

// Events retrieves events matching the query.
func (c *Client) Events(q *EventsQuery) ([]*eventdb.Stored, error) {
	values := url.Values{}
	if q != nil {
		if q.Type != "" {
			values.Set("type", q.Type)
		}
		if q.Actor != nil {
			values.Set("actor", q.Actor.String())
		}
		if q.From != 0 {
			values.Set("from", strconv.FormatUint(q.From, 10))
		}
		if q.To != 0 {
			values.Set("to", strconv.FormatUint(q.To, 10))
		}
		if q.Order != "" {
			values.Set("order", string(q.Order))
		}
		if q.Offset != 0 {
			values.Set("offset", strconv.FormatUint(q.Offset, 10))
		}
		if q.Limit != 0 {
			values.Set("limit", strconv.FormatUint(q.Limit, 10))
		}
	}
	path := "/events"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var events []*eventdb.Stored
	if err := c.httpGET(path, &events); err != nil {
		return nil, err
	}
	return events, nil
}
