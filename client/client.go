package client

import (
	"log/slog"
	"time"
)

// Интервал опроса статуса аккаунта по умолчанию.
const defaultPollInterval = 30 * time.Second

// Client собирает части SDK портала в один фасад.
type Client struct {
	Session  *SessionStore
	API      *API
	Auth     *AuthManager
	Gate     *Gate
	Poller   *StatusPoller
	Payments *PaymentsClient
}

// New создаёт клиент портала с файловым хранилищем сессии.
func New(baseURL, storagePath string, log *slog.Logger) (*Client, error) {
	storage, err := NewFileStorage(storagePath)
	if err != nil {
		return nil, err
	}
	return NewWithStorage(baseURL, storage, log), nil
}

// NewWithStorage создаёт клиент портала поверх готового хранилища.
func NewWithStorage(baseURL string, storage Storage, log *slog.Logger) *Client {
	session := NewSessionStore(storage, log)
	api := NewAPI(baseURL, session, log)
	auth := NewAuthManager(api, session, log)

	return &Client{
		Session:  session,
		API:      api,
		Auth:     auth,
		Gate:     NewGate(auth),
		Poller:   NewStatusPoller(auth, defaultPollInterval, log),
		Payments: NewPaymentsClient(api, log),
	}
}
