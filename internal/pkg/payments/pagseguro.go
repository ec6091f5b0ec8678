package payments

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/clubshop-app/ClubShop/internal/pkg/env"
)

const defaultPagSeguroAPIBaseURL = "https://ws.pagseguro.uol.com.br"

// PagSeguro transaction status codes that count as settled. 3 is "paid",
// 4 is "available" (paid and past the dispute window).
const (
	pagSeguroStatusPaid      = 3
	pagSeguroStatusAvailable = 4
)

// PagSeguroClient resolves webhook notification codes against the gateway.
// The inbound notification carries no payment details, only a code; the
// transaction is fetched server-side with account credentials before any of
// it is trusted.
type PagSeguroClient struct {
	Email      string
	Token      string
	APIBaseURL string

	HTTPClient *http.Client
}

// PagSeguroTransaction is the subset of the gateway transaction this core
// needs. Reference carries the local payment id the checkout was created
// with.
type PagSeguroTransaction struct {
	XMLName     xml.Name `xml:"transaction"`
	Code        string   `xml:"code"`
	Reference   string   `xml:"reference"`
	Status      int      `xml:"status"`
	GrossAmount float64  `xml:"grossAmount"`
}

// IsPaid reports whether the transaction status is a settled one.
func (t *PagSeguroTransaction) IsPaid() bool {
	return t.Status == pagSeguroStatusPaid || t.Status == pagSeguroStatusAvailable
}

// PaymentID parses the local payment id out of the transaction reference.
func (t *PagSeguroTransaction) PaymentID() (uint, error) {
	ref := strings.TrimSpace(t.Reference)
	if ref == "" {
		return 0, errors.New("transaction has no reference")
	}
	id, err := strconv.ParseUint(ref, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("transaction reference %q is not a payment id", ref)
	}
	return uint(id), nil
}

func NewPagSeguroClientFromEnv() *PagSeguroClient {
	return &PagSeguroClient{
		Email:      strings.TrimSpace(env.GetEnv("PAGSEGURO_EMAIL", "")),
		Token:      strings.TrimSpace(env.GetEnv("PAGSEGURO_TOKEN", "")),
		APIBaseURL: strings.TrimRight(env.GetEnv("PAGSEGURO_API_BASE_URL", defaultPagSeguroAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchNotification looks up the transaction behind a notification code.
func (c *PagSeguroClient) FetchNotification(ctx context.Context, notificationCode string) (*PagSeguroTransaction, error) {
	if strings.TrimSpace(c.Email) == "" || strings.TrimSpace(c.Token) == "" {
		return nil, errors.New("PAGSEGURO_EMAIL/PAGSEGURO_TOKEN are not configured")
	}
	code := strings.TrimSpace(notificationCode)
	if code == "" {
		return nil, errors.New("notification code is required")
	}

	q := url.Values{}
	q.Set("email", c.Email)
	q.Set("token", c.Token)
	endpoint := fmt.Sprintf("%s/v3/transactions/notifications/%s?%s", c.APIBaseURL, url.PathEscape(code), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("notification lookup failed with status %d", resp.StatusCode)
	}

	var tx PagSeguroTransaction
	if err := xml.Unmarshal(body, &tx); err != nil {
		return nil, fmt.Errorf("invalid notification response: %w", err)
	}
	return &tx, nil
}
