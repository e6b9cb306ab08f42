// Package mock implements acquirer.Adapter with deterministic, amount-keyed
// outcomes (§4.5) for local development and the end-to-end test scenarios in
// spec §8. Delay simulation is grounded on the teacher's webhookService,
// which likewise sleeps between retries on a goroutine rather than blocking
// request handling; here it runs inline since the call itself represents
// network latency to a (simulated) acquirer.
package mock

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"payment-gateway/internal/acquirer"
)

const Name = "mock"

const (
	amountRequiresAction = 66600
	amountFailed         = 99900
)

// Adapter is registered once in the process-wide acquirer registry (C4) and
// its methods are called concurrently by every in-flight request, so rng
// access is serialized under rngMu — math/rand.Rand is not safe for
// concurrent use on its own.
type Adapter struct {
	rngMu sync.Mutex
	rng   *rand.Rand
}

func New() *Adapter {
	return &Adapter{rng: rand.New(rand.NewSource(1))}
}

func (a *Adapter) Name() string { return Name }

func (a *Adapter) simulateDelay(ctx context.Context) {
	a.rngMu.Lock()
	n := a.rng.Intn(100)
	a.rngMu.Unlock()

	d := 50*time.Millisecond + time.Duration(n)*time.Millisecond
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func (a *Adapter) Authorize(ctx context.Context, in acquirer.AuthorizeInput) (acquirer.AuthorizeOutput, error) {
	a.simulateDelay(ctx)

	switch in.Amount {
	case amountRequiresAction:
		return acquirer.AuthorizeOutput{
			Outcome:           acquirer.OutcomeRequiresAction,
			AcquirerReference: "mock_ref_" + in.PaymentIntentID.String(),
			ThreeDS: &acquirer.ThreeDSContinuation{
				Flow:        "redirect",
				RedirectURL: "https://mock-acquirer.test/3ds/" + in.PaymentIntentID.String(),
				MethodURL:   "https://mock-acquirer.test/3ds/method/" + in.PaymentIntentID.String(),
			},
		}, nil
	case amountFailed:
		return acquirer.AuthorizeOutput{
			Outcome: acquirer.OutcomeFailed,
			ProcessorResponse: acquirer.ProcessorResponse{
				Code:    "05",
				Message: "do not honor",
			},
		}, nil
	default:
		return acquirer.AuthorizeOutput{
			Outcome:           acquirer.OutcomeAuthorized,
			AmountAuthorized:  in.Amount,
			AcquirerReference: "mock_ref_" + in.PaymentIntentID.String(),
			AuthorizationCode: "999999",
			Network:           in.PaymentMethod.Network,
			ProcessorResponse: acquirer.ProcessorResponse{
				Code: "00",
				AVS:  "Y",
				CVV:  "M",
			},
		}, nil
	}
}

func (a *Adapter) Capture(ctx context.Context, in acquirer.CaptureInput) (acquirer.CaptureOutput, error) {
	a.simulateDelay(ctx)
	return acquirer.CaptureOutput{
		Outcome:           acquirer.OutcomeSucceeded,
		AmountCaptured:    in.Amount,
		AcquirerReference: in.AcquirerReference,
		ProcessorResponse: acquirer.ProcessorResponse{Code: "00"},
	}, nil
}

func (a *Adapter) Refund(ctx context.Context, in acquirer.RefundInput) (acquirer.RefundOutput, error) {
	a.simulateDelay(ctx)
	return acquirer.RefundOutput{
		Outcome:           acquirer.OutcomeSucceeded,
		AcquirerReference: in.AcquirerReference,
		ProcessorResponse: acquirer.ProcessorResponse{Code: "00"},
	}, nil
}

func (a *Adapter) Void(ctx context.Context, in acquirer.VoidInput) (acquirer.VoidOutput, error) {
	a.simulateDelay(ctx)
	return acquirer.VoidOutput{
		Outcome:           acquirer.OutcomeSucceeded,
		ProcessorResponse: acquirer.ProcessorResponse{Code: "00"},
	}, nil
}

// AuthorizeWith3DS completes the deterministic requires_action case started
// by Authorize: any PaRes value succeeds, matching the mock's policy of
// never failing a call once a caller has reached the continuation step.
func (a *Adapter) AuthorizeWith3DS(ctx context.Context, in acquirer.ContinueInput) (acquirer.AuthorizeOutput, error) {
	a.simulateDelay(ctx)
	return acquirer.AuthorizeOutput{
		Outcome:           acquirer.OutcomeAuthorized,
		AmountAuthorized:  amountRequiresAction,
		AcquirerReference: in.AcquirerReference,
		AuthorizationCode: "999999",
		ProcessorResponse: acquirer.ProcessorResponse{Code: "00", AVS: "Y", CVV: "M"},
	}, nil
}

var _ acquirer.Adapter = (*Adapter)(nil)
var _ acquirer.VoidCapable = (*Adapter)(nil)
var _ acquirer.ThreeDSCapable = (*Adapter)(nil)
