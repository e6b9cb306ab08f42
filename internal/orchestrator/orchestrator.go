// Package orchestrator implements C8, the payment state machine driving the
// acquirer contract through Confirm/CompleteAuthentication/Capture/Refund/
// Cancel. Grounded on the teacher's service.PaymentServiceImpl: the same
// begin-tx / load-and-check / branch-on-business-rule / persist / commit /
// best-effort-post-commit-side-effect shape, down to the `defer
// dbTx.Rollback` idiom and structured zerolog completion log.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"payment-gateway/internal/acquirer"
	"payment-gateway/internal/core/domain"
	"payment-gateway/internal/core/ports"
	"payment-gateway/internal/routing"
	"payment-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// threeDSTokenTTL bounds how long a continuation token survives, matching
// the window a 3DS challenge page is expected to stay open.
const threeDSTokenTTL = 15 * time.Minute

// Orchestrator implements ports.PaymentOrchestrator.
type Orchestrator struct {
	intents    ports.PaymentIntentRepository
	charges    ports.ChargeRepository
	refunds    ports.RefundRepository
	merchants  ports.MerchantRepository
	transactor ports.DBTransactor
	registry   *acquirer.Registry
	kv         ports.KVStore
	crypto     ports.CryptoService
	clock      ports.Clock
	idGen      ports.IDGenerator
	emitter    ports.EventEmitter
	tokens     ports.TokenService
	env        routing.Env
	log        zerolog.Logger
}

func New(
	intents ports.PaymentIntentRepository,
	charges ports.ChargeRepository,
	refunds ports.RefundRepository,
	merchants ports.MerchantRepository,
	transactor ports.DBTransactor,
	registry *acquirer.Registry,
	kv ports.KVStore,
	crypto ports.CryptoService,
	clock ports.Clock,
	idGen ports.IDGenerator,
	emitter ports.EventEmitter,
	tokens ports.TokenService,
	env routing.Env,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		intents: intents, charges: charges, refunds: refunds, merchants: merchants,
		transactor: transactor, registry: registry, kv: kv, crypto: crypto,
		clock: clock, idGen: idGen, emitter: emitter, tokens: tokens, env: env, log: log,
	}
}

func (o *Orchestrator) newUUID() uuid.UUID {
	return uuid.UUID(o.idGen.NewID())
}

// CreateIntent inserts a fresh PaymentIntent in requires_payment_method (§4.10 POST /payment_intents).
func (o *Orchestrator) CreateIntent(ctx context.Context, merchantID uuid.UUID, customerID *uuid.UUID, amount uint64, currency string, capture domain.CaptureMethod, confirmation domain.ConfirmationMethod, description string, metadata map[string]string) (*domain.PaymentIntent, error) {
	now := o.clock.Now().UTC()
	pi := domain.NewPaymentIntent(o.newUUID(), merchantID, amount, currency, capture, confirmation, now)
	pi.CustomerID = customerID
	pi.Description = description
	pi.Metadata = metadata

	dbTx, err := o.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := o.intents.Create(ctx, dbTx, pi); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payment intent: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	o.emitBestEffort(ctx, merchantID, domain.EventPaymentIntentCreated, pi)
	return pi, nil
}

// Confirm implements §4.8 Confirm.
func (o *Orchestrator) Confirm(ctx context.Context, merchantID, intentID uuid.UUID, method ports.PaymentMethodInput, returnURL string) (*domain.PaymentIntent, error) {
	pi, err := o.intents.GetByID(ctx, merchantID, intentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load payment intent: %w", err))
	}
	if pi == nil {
		return nil, apperror.ErrNotFound("payment_intent")
	}
	if pi.Status != domain.PaymentIntentRequiresPaymentMethod {
		return nil, apperror.ErrInvalidState("payment intent is not in requires_payment_method")
	}
	if pi.Amount == 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	card, display, err := o.resolvePaymentMethod(ctx, method)
	if err != nil {
		return nil, err
	}
	pi.PaymentMethod = display

	merchant, err := o.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}

	route := routing.PickRoute(pi, merchant.RoutingConfig, o.env)
	adapter, err := o.registry.Get(route.Adapter)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	in := acquirer.AuthorizeInput{
		RequestID:       requestIDFromContext(ctx),
		MerchantID:      merchantID,
		PaymentIntentID: intentID,
		Amount:          pi.Amount,
		Currency:        pi.Currency,
		PaymentMethod:   card,
		Route:           route,
		Metadata:        pi.Metadata,
	}

	out, err := adapter.Authorize(ctx, in)
	if err != nil {
		return nil, apperror.ErrAdapterTransport(err)
	}

	return o.applyAuthorizeOutcome(ctx, pi, route, out, returnURL)
}

// CompleteAuthentication implements §4.8's 3DS return leg.
func (o *Orchestrator) CompleteAuthentication(ctx context.Context, merchantID, intentID uuid.UUID, continuationToken string, authResult map[string]string) (*domain.PaymentIntent, error) {
	pi, err := o.intents.GetByID(ctx, merchantID, intentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load payment intent: %w", err))
	}
	if pi == nil {
		return nil, apperror.ErrNotFound("payment_intent")
	}
	if pi.Status != domain.PaymentIntentRequiresAction {
		return nil, apperror.ErrInvalidState("payment intent is not in requires_action")
	}
	claims, err := o.tokens.Validate(continuationToken)
	if err != nil || claims.PaymentIntentID != intentID || claims.MerchantID != merchantID {
		return nil, apperror.ErrInvalidToken()
	}
	route := pi.AcquirerRouting.SelectedRoute
	if route == nil {
		return nil, apperror.InternalError(fmt.Errorf("intent %s has no resolved route", intentID))
	}
	if claims.RouteFingerprint != route.Adapter {
		return nil, apperror.ErrInvalidToken()
	}
	adapter, err := o.registry.Get(route.Adapter)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	threeDSAdapter, ok := adapter.(acquirer.ThreeDSCapable)
	if !ok {
		return nil, apperror.ErrInvalidState("adapter does not support 3DS continuation")
	}

	acquirerRef := ""
	if pi.AcquirerRouting.ThreeDS != nil {
		acquirerRef = pi.AcquirerRouting.ThreeDS.AcquirerReference
	}
	out, err := threeDSAdapter.AuthorizeWith3DS(ctx, acquirer.ContinueInput{
		RequestID:         requestIDFromContext(ctx),
		AcquirerReference: acquirerRef,
		PaRes:             authResult["PaRes"],
		MD:                authResult["MD"],
		Route:             acquirer.Route{Adapter: route.Adapter, MerchantRef: route.MerchantRef},
	})
	if err != nil {
		return nil, apperror.ErrAdapterTransport(err)
	}
	if out.Outcome == acquirer.OutcomeRequiresAction {
		return nil, apperror.InternalError(fmt.Errorf("adapter returned requires_action from a 3DS continuation call"))
	}

	priorReturnURL := ""
	if pi.AcquirerRouting.ThreeDS != nil {
		priorReturnURL = pi.AcquirerRouting.ThreeDS.ReturnURL
	}
	return o.applyAuthorizeOutcome(ctx, pi, acquirer.Route{Adapter: route.Adapter, MerchantRef: route.MerchantRef}, out, priorReturnURL)
}

// applyAuthorizeOutcome implements §4.8 Confirm step 6 / CompleteAuthentication's shared branch logic.
func (o *Orchestrator) applyAuthorizeOutcome(ctx context.Context, pi *domain.PaymentIntent, route acquirer.Route, out acquirer.AuthorizeOutput, returnURL string) (*domain.PaymentIntent, error) {
	now := o.clock.Now().UTC()

	dbTx, err := o.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	pi.AcquirerRouting.SelectedRoute = &domain.ResolvedRoute{Adapter: route.Adapter, MerchantRef: route.MerchantRef}
	pi.UpdatedAt = now

	switch out.Outcome {
	case acquirer.OutcomeAuthorized:
		chargeStatus := domain.ChargeAuthorized
		nextStatus := domain.PaymentIntentProcessing
		if pi.CaptureMethod == domain.CaptureAutomatic {
			chargeStatus = domain.ChargeCaptured
			nextStatus = domain.PaymentIntentSucceeded
		}
		charge := &domain.Charge{
			ID:                o.newUUID(),
			MerchantID:        pi.MerchantID,
			PaymentIntentID:   pi.ID,
			AmountAuthorized:  out.AmountAuthorized,
			Currency:          pi.Currency,
			Status:            chargeStatus,
			AcquirerName:      route.Adapter,
			AcquirerReference: out.AcquirerReference,
			AuthorizationCode: out.AuthorizationCode,
			Network:           out.Network,
			ProcessorResponse: domain.ProcessorResponse{
				Code: out.ProcessorResponse.Code, Message: out.ProcessorResponse.Message,
				AVS: out.ProcessorResponse.AVS, CVV: out.ProcessorResponse.CVV,
			},
			CreatedAt: now, UpdatedAt: now,
		}
		if chargeStatus == domain.ChargeCaptured {
			charge.AmountCaptured = out.AmountAuthorized
		}
		if err := o.charges.Create(ctx, dbTx, charge); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create charge: %w", err))
		}
		pi.Status = nextStatus
		if err := o.intents.Update(ctx, dbTx, pi); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("update payment intent: %w", err))
		}
		if err := dbTx.Commit(ctx); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
		}

		o.emitBestEffort(ctx, pi.MerchantID, domain.EventChargeAuthorized, charge)
		if nextStatus == domain.PaymentIntentSucceeded {
			o.emitBestEffort(ctx, pi.MerchantID, domain.EventPaymentIntentSucceeded, pi)
		} else {
			o.emitBestEffort(ctx, pi.MerchantID, domain.EventPaymentIntentProcessing, pi)
		}
		o.log.Info().Str("payment_intent_id", pi.ID.String()).Str("status", string(pi.Status)).Msg("payment intent confirmed")
		return pi, nil

	case acquirer.OutcomeRequiresAction:
		pi.Status = domain.PaymentIntentRequiresAction
		token, err := o.tokens.Generate(pi.ID, pi.MerchantID, route.Adapter, threeDSTokenTTL)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("generate continuation token: %w", err))
		}
		pi.AcquirerRouting.ThreeDS = &domain.ThreeDSContinue{
			Flow:              out.ThreeDS.Flow,
			RedirectURL:       appendContinuationState(out.ThreeDS.RedirectURL, token),
			MethodURL:         out.ThreeDS.MethodURL,
			AcquirerReference: out.AcquirerReference,
			Data:              out.ThreeDS.Data,
			ContinuationToken: token,
			ReturnURL:         returnURL,
		}
		if err := o.intents.Update(ctx, dbTx, pi); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("update payment intent: %w", err))
		}
		if err := dbTx.Commit(ctx); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
		}
		o.emitBestEffort(ctx, pi.MerchantID, domain.EventPaymentIntentRequiresAction, pi)
		return pi, nil

	default: // acquirer.OutcomeFailed
		charge := &domain.Charge{
			ID: o.newUUID(), MerchantID: pi.MerchantID, PaymentIntentID: pi.ID,
			Currency: pi.Currency, Status: domain.ChargeFailed, AcquirerName: route.Adapter,
			ProcessorResponse: domain.ProcessorResponse{Code: out.ProcessorResponse.Code, Message: out.ProcessorResponse.Message},
			CreatedAt: now, UpdatedAt: now,
		}
		if err := o.charges.Create(ctx, dbTx, charge); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create charge: %w", err))
		}
		pi.Status = domain.PaymentIntentFailed
		if err := o.intents.Update(ctx, dbTx, pi); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("update payment intent: %w", err))
		}
		if err := dbTx.Commit(ctx); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
		}
		o.emitBestEffort(ctx, pi.MerchantID, domain.EventChargeFailed, charge)
		o.emitBestEffort(ctx, pi.MerchantID, domain.EventPaymentIntentFailed, pi)
		return nil, apperror.New(apperror.TypeInvalidRequest, out.ProcessorResponse.Message, 400)
	}
}

// Capture implements §4.8 Capture.
func (o *Orchestrator) Capture(ctx context.Context, merchantID, intentID uuid.UUID, amount *uint64) (*domain.PaymentIntent, error) {
	pi, err := o.intents.GetByID(ctx, merchantID, intentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load payment intent: %w", err))
	}
	if pi == nil {
		return nil, apperror.ErrNotFound("payment_intent")
	}
	charge, err := o.charges.GetByPaymentIntentID(ctx, merchantID, intentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load charge: %w", err))
	}
	if charge == nil || charge.Status != domain.ChargeAuthorized {
		return nil, apperror.ErrInvalidState("charge is not authorized")
	}
	captureAmount := charge.AmountAuthorized
	if amount != nil {
		captureAmount = *amount
	}
	route := pi.AcquirerRouting.SelectedRoute
	if route == nil {
		return nil, apperror.InternalError(fmt.Errorf("intent %s has no resolved route", intentID))
	}
	adapter, err := o.registry.Get(route.Adapter)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	out, err := adapter.Capture(ctx, acquirer.CaptureInput{
		RequestID:         requestIDFromContext(ctx),
		AcquirerReference: charge.AcquirerReference,
		Amount:            captureAmount,
		Route:             acquirer.Route{Adapter: route.Adapter, MerchantRef: route.MerchantRef},
	})
	if err != nil {
		return nil, apperror.ErrAdapterTransport(err)
	}
	if out.Outcome != acquirer.OutcomeSucceeded {
		return nil, apperror.New(apperror.TypeInvalidRequest, "capture declined", 400)
	}

	now := o.clock.Now().UTC()
	dbTx, err := o.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	updatedCharge := *charge
	updatedCharge.AmountCaptured = out.AmountCaptured
	updatedCharge.Status = domain.ChargeCaptured
	updatedCharge.UpdatedAt = now
	ok, err := o.charges.UpdateCAS(ctx, dbTx, &updatedCharge, domain.ChargeAuthorized)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update charge: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInvalidState("charge state changed concurrently")
	}

	pi.Status = domain.PaymentIntentSucceeded
	pi.UpdatedAt = now
	if err := o.intents.Update(ctx, dbTx, pi); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update payment intent: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	o.emitBestEffort(ctx, pi.MerchantID, domain.EventChargeCaptured, &updatedCharge)
	o.emitBestEffort(ctx, pi.MerchantID, domain.EventPaymentIntentSucceeded, pi)
	return pi, nil
}

// Cancel implements the HTTP surface's /cancel operation: before any charge
// exists this is a pure status flip; once an authorized charge exists it
// folds in §4.8 Void (the adapter-level reversal of an uncaptured authorization).
func (o *Orchestrator) Cancel(ctx context.Context, merchantID, intentID uuid.UUID) (*domain.PaymentIntent, error) {
	pi, err := o.intents.GetByID(ctx, merchantID, intentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load payment intent: %w", err))
	}
	if pi == nil {
		return nil, apperror.ErrNotFound("payment_intent")
	}
	if pi.Status == domain.PaymentIntentSucceeded {
		return nil, apperror.ErrInvalidState("cannot cancel a succeeded payment intent")
	}
	if pi.Status.IsTerminal() {
		return nil, apperror.ErrInvalidState("payment intent is already terminal")
	}

	charge, err := o.charges.GetByPaymentIntentID(ctx, merchantID, intentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load charge: %w", err))
	}
	if charge != nil && charge.Status == domain.ChargeAuthorized {
		if err := o.voidCharge(ctx, pi, charge); err != nil {
			return nil, err
		}
		return pi, nil
	}

	now := o.clock.Now().UTC()
	dbTx, err := o.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	pi.Status = domain.PaymentIntentCanceled
	pi.UpdatedAt = now
	if err := o.intents.Update(ctx, dbTx, pi); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update payment intent: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	o.emitBestEffort(ctx, pi.MerchantID, domain.EventPaymentIntentCanceled, pi)
	return pi, nil
}

// voidCharge implements §4.8 Void.
func (o *Orchestrator) voidCharge(ctx context.Context, pi *domain.PaymentIntent, charge *domain.Charge) error {
	route := pi.AcquirerRouting.SelectedRoute
	if route == nil {
		return apperror.InternalError(fmt.Errorf("intent %s has no resolved route", pi.ID))
	}
	adapter, err := o.registry.Get(route.Adapter)
	if err != nil {
		return apperror.InternalError(err)
	}
	voidAdapter, ok := adapter.(acquirer.VoidCapable)
	if !ok {
		return apperror.ErrInvalidState("adapter does not support void")
	}
	out, err := voidAdapter.Void(ctx, acquirer.VoidInput{
		RequestID:         requestIDFromContext(ctx),
		AcquirerReference: charge.AcquirerReference,
		Route:             acquirer.Route{Adapter: route.Adapter, MerchantRef: route.MerchantRef},
	})
	if err != nil {
		return apperror.ErrAdapterTransport(err)
	}
	if out.Outcome != acquirer.OutcomeSucceeded {
		return apperror.New(apperror.TypeInvalidRequest, "void declined", 400)
	}

	now := o.clock.Now().UTC()
	dbTx, err := o.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	updatedCharge := *charge
	updatedCharge.Status = domain.ChargeVoided
	updatedCharge.UpdatedAt = now
	ok2, err := o.charges.UpdateCAS(ctx, dbTx, &updatedCharge, domain.ChargeAuthorized)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("update charge: %w", err))
	}
	if !ok2 {
		return apperror.ErrInvalidState("charge state changed concurrently")
	}
	pi.Status = domain.PaymentIntentCanceled
	pi.UpdatedAt = now
	if err := o.intents.Update(ctx, dbTx, pi); err != nil {
		return apperror.InternalError(fmt.Errorf("update payment intent: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	o.emitBestEffort(ctx, pi.MerchantID, domain.EventChargeVoided, &updatedCharge)
	o.emitBestEffort(ctx, pi.MerchantID, domain.EventPaymentIntentCanceled, pi)
	return nil
}

// Refund implements §4.8 Refund.
func (o *Orchestrator) Refund(ctx context.Context, merchantID, chargeID uuid.UUID, amount *uint64, reason string) (*domain.Refund, error) {
	charge, err := o.charges.GetByID(ctx, merchantID, chargeID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load charge: %w", err))
	}
	if charge == nil {
		return nil, apperror.ErrNotFound("charge")
	}
	if !charge.IsRefundEligible() {
		return nil, apperror.ErrInvalidState("charge is not eligible for refund")
	}
	refundAmount := charge.RemainingRefundable()
	if amount != nil {
		refundAmount = *amount
	}
	if refundAmount == 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if refundAmount > charge.RemainingRefundable() {
		return nil, apperror.ErrInvalidAmount()
	}

	route := acquirer.Route{Adapter: charge.AcquirerName}
	adapter, err := o.registry.Get(route.Adapter)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	out, err := adapter.Refund(ctx, acquirer.RefundInput{
		RequestID:         requestIDFromContext(ctx),
		AcquirerReference: charge.AcquirerReference,
		Amount:            refundAmount,
		Reason:            reason,
		Route:             route,
	})
	if err != nil {
		return nil, apperror.ErrAdapterTransport(err)
	}
	if out.Outcome != acquirer.OutcomeSucceeded && out.Outcome != acquirer.OutcomePending {
		return nil, apperror.New(apperror.TypeInvalidRequest, "refund declined", 400)
	}

	now := o.clock.Now().UTC()
	refund := &domain.Refund{
		ID: o.newUUID(), MerchantID: merchantID, ChargeID: chargeID,
		Amount: refundAmount, Currency: charge.Currency, Reason: reason,
		Status: domain.RefundSucceeded, AcquirerReference: out.AcquirerReference,
		CreatedAt: now, UpdatedAt: now,
	}

	dbTx, err := o.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := o.refunds.Create(ctx, dbTx, refund); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create refund: %w", err))
	}

	updatedCharge := *charge
	updatedCharge.AmountRefunded += refundAmount
	if updatedCharge.AmountRefunded >= updatedCharge.AmountCaptured {
		updatedCharge.Status = domain.ChargeRefunded
	} else {
		updatedCharge.Status = domain.ChargePartiallyRefunded
	}
	updatedCharge.UpdatedAt = now
	ok, err := o.charges.UpdateCAS(ctx, dbTx, &updatedCharge, charge.Status)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update charge: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInvalidState("charge state changed concurrently")
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	o.emitBestEffort(ctx, merchantID, domain.EventRefundSucceeded, refund)
	o.log.Info().Str("refund_id", refund.ID.String()).Str("charge_id", chargeID.String()).Msg("refund processed")
	return refund, nil
}

// resolvePaymentMethod implements §9 Open Question #3: a raw card object is
// used directly; a token reference is read from the KV store ("tok:" key)
// and decrypted into card data. The read does not remove the KV entry, so a
// token stays usable until its KV TTL expires. Neither PAN nor CVV is ever
// persisted past this call.
func (o *Orchestrator) resolvePaymentMethod(ctx context.Context, method ports.PaymentMethodInput) (acquirer.CardDetails, *domain.DisplayPaymentMethod, error) {
	switch method.Type {
	case "card":
		if method.Card == nil {
			return acquirer.CardDetails{}, nil, apperror.ErrValidation("payment_method.card is required")
		}
		c := method.Card
		return acquirer.CardDetails{
				PAN: c.Number, ExpMonth: c.ExpMonth, ExpYear: c.ExpYear, CVV: c.CVV, Last4: last4(c.Number),
			}, &domain.DisplayPaymentMethod{
				Type: "card", Last4: last4(c.Number), ExpMonth: c.ExpMonth, ExpYear: c.ExpYear,
			}, nil

	case "token":
		sealed, found, err := o.kv.Get(ctx, "tok:"+method.TokenRef)
		if err != nil {
			return acquirer.CardDetails{}, nil, apperror.InternalError(fmt.Errorf("read token: %w", err))
		}
		if !found {
			return acquirer.CardDetails{}, nil, apperror.ErrInvalidToken()
		}
		plain, err := o.crypto.Decrypt(string(sealed))
		if err != nil {
			return acquirer.CardDetails{}, nil, apperror.ErrEncryptionFailure(err)
		}
		var c acquirer.CardDetails
		if err := json.Unmarshal([]byte(plain), &c); err != nil {
			return acquirer.CardDetails{}, nil, apperror.InternalError(fmt.Errorf("unmarshal sealed card: %w", err))
		}
		return c, &domain.DisplayPaymentMethod{
			Type: "card", Brand: c.Brand, Last4: c.Last4, ExpMonth: c.ExpMonth, ExpYear: c.ExpYear, TokenRef: method.TokenRef,
		}, nil

	default:
		return acquirer.CardDetails{}, nil, apperror.ErrValidation("payment_method.type must be card or token")
	}
}

func last4(pan string) string {
	if len(pan) < 4 {
		return pan
	}
	return pan[len(pan)-4:]
}

// emitBestEffort implements §4.8's "failures in event emission MUST NOT roll
// back the operation" rule: always called after the owning transaction has
// committed, with a nil tx so the emitter falls back to the pool (§9 Open
// Question #2).
func (o *Orchestrator) emitBestEffort(ctx context.Context, merchantID uuid.UUID, eventType string, object interface{}) {
	if err := o.emitter.Emit(ctx, nil, merchantID, eventType, object); err != nil {
		o.log.Warn().Err(err).Str("event_type", eventType).Str("merchant_id", merchantID.String()).Msg("event emission failed")
	}
}

func requestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

type requestIDKey struct{}

// appendContinuationState embeds the continuation token as the `state`
// query parameter on the acquirer's redirect URL, the carrier named in
// ports.TokenService's doc comment, so a returning browser hands it back
// to complete_authentication without any server-side lookup.
func appendContinuationState(redirectURL, token string) string {
	if redirectURL == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(redirectURL, "?") {
		sep = "&"
	}
	return redirectURL + sep + "state=" + url.QueryEscape(token)
}

// WithRequestID stashes the request id for outbound adapter/webhook calls to read back.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
