package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2/google"
	fcm "google.golang.org/api/fcm/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// sendFunc sends one message to projects/<id> and returns the message name.
type sendFunc func(ctx context.Context, parent string, msg *fcm.Message) (string, error)

// FCMSender sends through the Firebase Cloud Messaging HTTP v1 API.
// The v1 API has no multicast endpoint, so each token is a separate call.
type FCMSender struct {
	parent string
	send   sendFunc
}

// NewFCMSender builds a sender from a service-account JSON key.
func NewFCMSender(ctx context.Context, serviceAccountJSON []byte) (*FCMSender, error) {
	creds, err := google.CredentialsFromJSON(ctx, serviceAccountJSON, fcm.CloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}
	if creds.ProjectID == "" {
		return nil, errors.New("service account has no project_id")
	}

	svc, err := fcm.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create fcm service: %w", err)
	}

	return &FCMSender{
		parent: "projects/" + creds.ProjectID,
		send: func(ctx context.Context, parent string, msg *fcm.Message) (string, error) {
			resp, err := svc.Projects.Messages.Send(parent, &fcm.SendMessageRequest{Message: msg}).Context(ctx).Do()
			if err != nil {
				return "", err
			}
			return resp.Name, nil
		},
	}, nil
}

// SendMulticast sends msg to each token in turn.
func (s *FCMSender) SendMulticast(ctx context.Context, msg MulticastMessage) (*BatchResponse, error) {
	if len(msg.Tokens) == 0 {
		return nil, errors.New("multicast has no tokens")
	}

	batch := &BatchResponse{}
	for _, token := range msg.Tokens {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		name, err := s.send(ctx, s.parent, &fcm.Message{
			Token: token,
			Notification: &fcm.Notification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			Data: msg.Data,
		})
		if err != nil {
			batch.add(SendResponse{
				Token:        token,
				Error:        err.Error(),
				Unregistered: isUnregistered(err),
			})
			continue
		}

		batch.add(SendResponse{Token: token, Success: true, MessageID: name})
	}

	return batch, nil
}

// Enabled always returns true.
func (s *FCMSender) Enabled() bool {
	return true
}

// isUnregistered matches the v1 API's UNREGISTERED error (HTTP 404).
func isUnregistered(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
