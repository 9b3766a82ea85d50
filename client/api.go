package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
)

// Максимальная глубина разбора вложенных конвертов ответа.
const maxUnwrapDepth = 10

// APIError описывает ошибку, возвращённую сервером.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// API выполняет HTTP-запросы к порталу: подставляет токен, разбирает
// конверт ответа и классифицирует ответы 401.
//
// 401 от конечных точек аутентификации никогда не завершает текущую
// сессию: неудачная попытка входа не должна разлогинивать уже
// вошедшего пользователя. 401 от остальных конечных точек завершает
// сессию, если токен был приложен к запросу или сервер сообщил
// о неактивном аккаунте.
type API struct {
	baseURL     string
	httpClient  *http.Client
	session     *SessionStore
	log         *slog.Logger
	forceLogout func(reason string)
}

// NewAPI создаёт обёртку над REST API портала.
func NewAPI(baseURL string, session *SessionStore, log *slog.Logger) *API {
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		session: session,
		log:     log,
	}
}

// SetForceLogoutHook регистрирует обработчик принудительного завершения
// сессии. Вызывается менеджером аутентификации.
func (a *API) SetForceLogoutHook(fn func(reason string)) {
	a.forceLogout = fn
}

// Do выполняет JSON-запрос и раскладывает данные конверта в out.
func (a *API) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return a.send(req, path, out)
}

// DoMultipart выполняет multipart-запрос с одним файлом и раскладывает
// данные конверта в out.
func (a *API) DoMultipart(ctx context.Context, path, field, filename, contentType string, file io.Reader, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return a.send(req, path, out)
}

func (a *API) send(req *http.Request, path string, out any) error {
	attached := a.attachToken(req)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	_ = json.Unmarshal(raw, &env)

	msg := env.Error
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if !isAuthPath(path) && (attached || strings.Contains(msg, "account is inactive")) {
			a.log.Warn("session rejected by server", slog.String("path", path), slog.String("reason", msg))
			if a.forceLogout != nil {
				a.forceLogout(msg)
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	// Конверт разворачивается из полного тела: сервер оборачивает данные
	// в data, сторонние прокси встречаются и с result, и с плоским телом.
	payload := UnwrapPayload(raw)
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// attachToken подставляет заголовок Authorization. Токен с невалидной
// формой удаляется из хранилища и не прикладывается.
func (a *API) attachToken(req *http.Request) bool {
	token := a.session.Token()
	if token == "" {
		return false
	}
	if !TokenIsValid(token) {
		a.log.Warn("malformed token dropped", sl.Err(fmt.Errorf("token failed shape check")))
		a.session.ClearToken()
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return true
}

// isAuthPath сообщает, относится ли путь к конечным точкам
// аутентификации. Профиль к ним не относится: его 401 означает
// недействительную сессию.
func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/auth/") && path != "/auth/profile"
}

// UnwrapPayload разворачивает вложенные конверты данных: пока значение
// является объектом с ключом data или result, извлекается вложенное
// значение. Разбор ограничен по глубине и заканчивается на первом
// объекте без ключей конверта.
func UnwrapPayload(raw json.RawMessage) json.RawMessage {
	for i := 0; i < maxUnwrapDepth; i++ {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return raw
		}
		if inner, ok := m["data"]; ok {
			raw = inner
			continue
		}
		if inner, ok := m["result"]; ok {
			raw = inner
			continue
		}
		return raw
	}
	return raw
}
