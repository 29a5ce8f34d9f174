package balance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/baely/balance/pkg/model"
)

const upBaseUri = "https://api.up.com.au/api/v1/"

// transactionSource fetches the details a webhook only references by ID
type transactionSource interface {
	GetAccount(ctx context.Context, accountId string) (model.AccountResource, error)
	GetTransaction(ctx context.Context, transactionId string) (model.TransactionResource, error)
}

type UpClient struct {
	accessToken string
	baseUri     string
	client      *http.Client
}

func NewUpClient(accessToken string) *UpClient {
	return &UpClient{
		accessToken: accessToken,
		baseUri:     upBaseUri,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *UpClient) request(ctx context.Context, endpoint string, ret interface{}) error {
	uri := fmt.Sprintf("%s%s", c.baseUri, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return err
	}

	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.accessToken))

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed with status: %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(ret)
}

func (c *UpClient) GetAccount(ctx context.Context, accountId string) (model.AccountResource, error) {
	var resp model.GetAccountResponse

	err := c.request(ctx, fmt.Sprintf("accounts/%s", accountId), &resp)
	if err != nil {
		return model.AccountResource{}, err
	}

	return resp.Data, nil
}

func (c *UpClient) GetTransaction(ctx context.Context, transactionId string) (model.TransactionResource, error) {
	var resp model.GetTransactionResponse

	err := c.request(ctx, fmt.Sprintf("transactions/%s", transactionId), &resp)
	if err != nil {
		return model.TransactionResource{}, err
	}

	return resp.Data, nil
}

// ValidateWebhookEvent checks the hex HMAC-SHA256 signature Up sends with
// every webhook. An empty secret never validates.
func ValidateWebhookEvent(payload []byte, signature, secret string) bool {
	if secret == "" {
		return false
	}
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(sig, mac.Sum(nil))
}
