package functions

import (
	"context"

	"sonaxhub/internal/forwarder"
	"sonaxhub/internal/resolver"
)

type handlers struct {
	deps Deps
}

// getContactData resolves the card's current object. Older cards pass only
// contactId, so that alone still resolves a contact.
func (h handlers) getContactData(ctx context.Context, params Parameters) (Response, error) {
	ref := resolver.Reference{
		ID:             params.String("objectId"),
		ObjectTypeCode: params.String("objectTypeId"),
	}
	if contactID := params.String("contactId"); ref.ID == "" && ref.ObjectTypeCode == "" && contactID != "" {
		ref = resolver.Reference{ID: contactID, ObjectTypeCode: resolver.ContactTypeCode}
	}

	rec, err := h.deps.Resolver.ResolveWithProperties(ctx, ref, params.List("properties"))
	if err != nil {
		return Response{}, err
	}
	return Response{Success: true, Data: rec}, nil
}

func (h handlers) initiateCall(ctx context.Context, params Parameters) (Response, error) {
	result, err := h.deps.Calls.Initiate(ctx, forwarder.CallRequest{
		AgentID:     params.String("agentId"),
		Extension:   params.String("extension"),
		PhoneNumber: params.String("phoneNumber"),
	})
	return fromResult(result, err)
}

func (h handlers) sendToWebhook(ctx context.Context, params Parameters) (Response, error) {
	result, err := h.deps.Webhooks.Forward(ctx, forwarder.WebhookRequest{
		UserID:      params.String("userId"),
		PhoneNumber: params.String("phoneNumber"),
	})
	return fromResult(result, err)
}

func fromResult(result *forwarder.Result, err error) (Response, error) {
	if err != nil {
		return Response{}, err
	}
	if !result.Success {
		return Response{}, &forwardError{message: result.Message}
	}
	return Response{Success: true, Message: result.Message, Data: result.Data}, nil
}

// forwardError keeps the forwarder's message verbatim.
type forwardError struct {
	message string
}

func (e *forwardError) Error() string { return e.message }

func (e *forwardError) Unwrap() error { return ErrForwardFailed }
