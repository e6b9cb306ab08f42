// Package cybersource implements acquirer.Adapter against CyberSource's REST
// API using the HTTP Signature (draft) authentication scheme (§4.6). The
// canonical-string-then-HMAC shape is grounded on the teacher's
// service.HMACSignatureService.Sign/BuildCanonicalString; the injected
// *http.Client behind an HTTPDoer interface is grounded on the teacher's
// service.webhookService.HTTPClient (constructor-injected for testability).
package cybersource

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"payment-gateway/internal/acquirer"
	"payment-gateway/internal/core/ports"
)

const Name = "cybersource"

// HTTPDoer is the minimal surface this adapter needs from *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config carries the per-merchant-route CyberSource credentials (§4.6).
type Config struct {
	MerchantID string
	KeyID      string
	SecretKey  string // base64-encoded, decoded to raw HMAC key at use
	BaseURL    string
	Host       string
}

type Adapter struct {
	cfg    Config
	client HTTPDoer
	clock  ports.Clock
}

func New(cfg Config, client HTTPDoer, clock ports.Clock) *Adapter {
	return &Adapter{cfg: cfg, client: client, clock: clock}
}

func (a *Adapter) Name() string { return Name }

// sign builds the Digest/Date/Signature headers for one request per the
// exact recipe in §4.6: signing string is
// "host: H\ndate: D\n(request-target): m p\ndigest: Dg\nv-c-merchant-id: M".
func (a *Adapter) sign(method, path string, body []byte) (headers map[string]string, err error) {
	digest := "SHA-256=" + base64.StdEncoding.EncodeToString(sha256Sum(body))
	date := a.clock.Now().UTC().Format(http.TimeFormat)

	signingString := strings.Join([]string{
		"host: " + a.cfg.Host,
		"date: " + date,
		"(request-target): " + strings.ToLower(method) + " " + path,
		"digest: " + digest,
		"v-c-merchant-id: " + a.cfg.MerchantID,
	}, "\n")

	secretRaw, err := base64.StdEncoding.DecodeString(a.cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("cybersource: decode secret key: %w", err)
	}
	mac := hmac.New(sha256.New, secretRaw)
	mac.Write([]byte(signingString))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	sigHeader := fmt.Sprintf(
		`keyid="%s", algorithm="HmacSHA256", headers="host date (request-target) digest v-c-merchant-id", signature="%s"`,
		a.cfg.KeyID, signature,
	)

	return map[string]string{
		"Content-Type":    "application/json",
		"v-c-merchant-id": a.cfg.MerchantID,
		"Date":            date,
		"Host":            a.cfg.Host,
		"Digest":          digest,
		"Signature":       sigHeader,
	}, nil
}

func sha256Sum(b []byte) []byte {
	h := sha256.Sum256(b)
	return h[:]
}

func (a *Adapter) do(ctx context.Context, method, path string, payload interface{}) (map[string]interface{}, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("cybersource: marshal request: %w", err)
	}
	headers, err := a.sign(method, path, body)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, method, a.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("cybersource: build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("cybersource: request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("cybersource: read response: %w", err)
	}
	var decoded map[string]interface{}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &decoded); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("cybersource: decode response: %w", err)
		}
	}
	return decoded, resp.StatusCode, nil
}

func amountString(minorUnits uint64) string {
	return fmt.Sprintf("%d.%02d", minorUnits/100, minorUnits%100)
}

func (a *Adapter) buildBillTo(b *acquirer.BillingAddress) map[string]interface{} {
	// Defaults kept provisional per DESIGN.md Open Question #4: MX/00000
	// stand in when the caller hasn't supplied a real billing address.
	country, postal := "MX", "00000"
	billTo := map[string]interface{}{
		"country":    country,
		"postalCode": postal,
	}
	if b == nil {
		return billTo
	}
	if b.Country != "" {
		billTo["country"] = b.Country
	}
	if b.PostalCode != "" {
		billTo["postalCode"] = b.PostalCode
	}
	if b.Line1 != "" {
		billTo["address1"] = b.Line1
	}
	if b.City != "" {
		billTo["locality"] = b.City
	}
	if b.State != "" {
		billTo["administrativeArea"] = b.State
	}
	return billTo
}

func (a *Adapter) Authorize(ctx context.Context, in acquirer.AuthorizeInput) (acquirer.AuthorizeOutput, error) {
	payload := map[string]interface{}{
		"processingInformation": map[string]interface{}{
			"capture":          false,
			"commerceIndicator": "internet",
		},
		"orderInformation": map[string]interface{}{
			"amountDetails": map[string]interface{}{
				"totalAmount": amountString(in.Amount),
				"currency":    in.Currency,
			},
			"billTo": a.buildBillTo(in.Billing),
		},
		"paymentInformation": map[string]interface{}{
			"card": map[string]interface{}{
				"number":       in.PaymentMethod.PAN,
				"expirationMonth": strconv.Itoa(in.PaymentMethod.ExpMonth),
				"expirationYear":  strconv.Itoa(in.PaymentMethod.ExpYear),
				"securityCode":    in.PaymentMethod.CVV,
			},
		},
	}
	if in.ThreeDS != nil && in.ThreeDS.MD != "" {
		payload["consumerAuthenticationInformation"] = map[string]interface{}{
			"cavv": in.ThreeDS.MD,
		}
	}

	decoded, _, err := a.do(ctx, http.MethodPost, "/pts/v2/payments", payload)
	if err != nil {
		return acquirer.AuthorizeOutput{}, err
	}

	status, _ := decoded["status"].(string)
	ref, _ := decoded["id"].(string)

	switch status {
	case "AUTHORIZED":
		code, msg := extractProcessorInfo(decoded)
		return acquirer.AuthorizeOutput{
			Outcome:           acquirer.OutcomeAuthorized,
			AmountAuthorized:  in.Amount,
			AcquirerReference: ref,
			Network:           in.PaymentMethod.Network,
			ProcessorResponse: acquirer.ProcessorResponse{Code: code, Message: msg},
			RawVendor:         fmt.Sprintf("%v", decoded),
		}, nil
	case "PENDING_AUTHENTICATION":
		acsURL, paReq := extractACSInfo(decoded)
		return acquirer.AuthorizeOutput{
			Outcome:           acquirer.OutcomeRequiresAction,
			AcquirerReference: ref,
			ThreeDS: &acquirer.ThreeDSContinuation{
				Flow:        "acs",
				RedirectURL: acsURL,
				Data:        paReq,
			},
			RawVendor: fmt.Sprintf("%v", decoded),
		}, nil
	default:
		msg := extractErrorMessage(decoded)
		return acquirer.AuthorizeOutput{
			Outcome:           acquirer.OutcomeFailed,
			ProcessorResponse: acquirer.ProcessorResponse{Message: msg},
			RawVendor:         fmt.Sprintf("%v", decoded),
		}, nil
	}
}

func (a *Adapter) AuthorizeWith3DS(ctx context.Context, in acquirer.ContinueInput) (acquirer.AuthorizeOutput, error) {
	payload := map[string]interface{}{
		"consumerAuthenticationInformation": map[string]interface{}{
			"paRes": in.PaRes,
			"md":    in.MD,
		},
	}
	decoded, _, err := a.do(ctx, http.MethodPost, "/pts/v2/payments/"+in.AcquirerReference+"/validations", payload)
	if err != nil {
		return acquirer.AuthorizeOutput{}, err
	}
	status, _ := decoded["status"].(string)
	if status == "AUTHORIZED" {
		code, msg := extractProcessorInfo(decoded)
		return acquirer.AuthorizeOutput{
			Outcome:           acquirer.OutcomeAuthorized,
			AcquirerReference: in.AcquirerReference,
			ProcessorResponse: acquirer.ProcessorResponse{Code: code, Message: msg},
		}, nil
	}
	return acquirer.AuthorizeOutput{
		Outcome:           acquirer.OutcomeFailed,
		ProcessorResponse: acquirer.ProcessorResponse{Message: extractErrorMessage(decoded)},
	}, nil
}

func (a *Adapter) Capture(ctx context.Context, in acquirer.CaptureInput) (acquirer.CaptureOutput, error) {
	payload := map[string]interface{}{
		"orderInformation": map[string]interface{}{
			"amountDetails": map[string]interface{}{"totalAmount": amountString(in.Amount)},
		},
	}
	decoded, _, err := a.do(ctx, http.MethodPost, "/pts/v2/payments/"+in.AcquirerReference+"/captures", payload)
	if err != nil {
		return acquirer.CaptureOutput{}, err
	}
	status, _ := decoded["status"].(string)
	outcome := acquirer.OutcomeFailed
	if status == "PENDING" {
		outcome = acquirer.OutcomeSucceeded
	}
	ref, _ := decoded["id"].(string)
	return acquirer.CaptureOutput{
		Outcome:           outcome,
		AmountCaptured:    in.Amount,
		AcquirerReference: ref,
	}, nil
}

func (a *Adapter) Refund(ctx context.Context, in acquirer.RefundInput) (acquirer.RefundOutput, error) {
	payload := map[string]interface{}{
		"orderInformation": map[string]interface{}{
			"amountDetails": map[string]interface{}{"totalAmount": amountString(in.Amount)},
		},
	}
	decoded, _, err := a.do(ctx, http.MethodPost, "/pts/v2/payments/"+in.AcquirerReference+"/refunds", payload)
	if err != nil {
		return acquirer.RefundOutput{}, err
	}
	status, _ := decoded["status"].(string)
	outcome := acquirer.OutcomeFailed
	if status == "PENDING" {
		outcome = acquirer.OutcomeSucceeded
	}
	ref, _ := decoded["id"].(string)
	return acquirer.RefundOutput{Outcome: outcome, AcquirerReference: ref}, nil
}

func (a *Adapter) Void(ctx context.Context, in acquirer.VoidInput) (acquirer.VoidOutput, error) {
	decoded, _, err := a.do(ctx, http.MethodPost, "/pts/v2/payments/"+in.AcquirerReference+"/voids", map[string]interface{}{})
	if err != nil {
		return acquirer.VoidOutput{}, err
	}
	status, _ := decoded["status"].(string)
	outcome := acquirer.OutcomeFailed
	if status == "VOIDED" || status == "REVERSED" {
		outcome = acquirer.OutcomeSucceeded
	}
	return acquirer.VoidOutput{Outcome: outcome}, nil
}

func extractProcessorInfo(decoded map[string]interface{}) (code, message string) {
	if pi, ok := decoded["processorInformation"].(map[string]interface{}); ok {
		if c, ok := pi["responseCode"].(string); ok {
			code = c
		}
	}
	return code, message
}

func extractACSInfo(decoded map[string]interface{}) (acsURL, paReq string) {
	if cai, ok := decoded["consumerAuthenticationInformation"].(map[string]interface{}); ok {
		if v, ok := cai["acsUrl"].(string); ok {
			acsURL = v
		}
		if v, ok := cai["pareq"].(string); ok {
			paReq = v
		}
	}
	return acsURL, paReq
}

func extractErrorMessage(decoded map[string]interface{}) string {
	if ei, ok := decoded["errorInformation"].(map[string]interface{}); ok {
		if m, ok := ei["message"].(string); ok {
			return m
		}
	}
	return ""
}

var (
	_ acquirer.Adapter        = (*Adapter)(nil)
	_ acquirer.VoidCapable    = (*Adapter)(nil)
	_ acquirer.ThreeDSCapable = (*Adapter)(nil)
)
