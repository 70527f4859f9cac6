package webhook

import (
	"errors"
	"fmt"

	"cloud.google.com/go/dialogflow/apiv2/dialogflowpb"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/greenbot-eco/greenbot/internal/types"
)

// ErrMalformedRequest is returned when the payload has no queryResult.intent.
var ErrMalformedRequest = errors.New("malformed webhook request")

var unmarshalOpts = protojson.UnmarshalOptions{DiscardUnknown: true}

// DecodeRequest parses a Dialogflow ES WebhookRequest body.
func DecodeRequest(body []byte) (types.IntentRequest, error) {
	var wr dialogflowpb.WebhookRequest
	if err := unmarshalOpts.Unmarshal(body, &wr); err != nil {
		return types.IntentRequest{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}

	qr := wr.GetQueryResult()
	if qr == nil {
		return types.IntentRequest{}, fmt.Errorf("%w: missing queryResult", ErrMalformedRequest)
	}
	if qr.GetIntent() == nil {
		return types.IntentRequest{}, fmt.Errorf("%w: missing queryResult.intent", ErrMalformedRequest)
	}

	params := types.Parameters{}
	if s := qr.GetParameters(); s != nil {
		params = s.AsMap()
	}

	return types.IntentRequest{
		Intent:     qr.GetIntent().GetDisplayName(),
		Parameters: params,
		SessionID:  types.SessionID(wr.GetSession()),
	}, nil
}

// EncodeResponse builds the WebhookResponse body carrying text both as
// fulfillmentText and as a single text message.
func EncodeResponse(text string) ([]byte, error) {
	resp := &dialogflowpb.WebhookResponse{
		FulfillmentText: text,
		FulfillmentMessages: []*dialogflowpb.Intent_Message{
			{
				Message: &dialogflowpb.Intent_Message_Text_{
					Text: &dialogflowpb.Intent_Message_Text{Text: []string{text}},
				},
			},
		},
	}
	return protojson.Marshal(resp)
}
