// Package payment реализует жизненный цикл заявки на оплату: создание
// пользователем и решение администратора. Переходы статусов
// односторонние: pending -> approved или pending -> rejected,
// терминальные статусы не изменяются.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	"github.com/kunalverma25/wifi-portal/internal/models"
	"github.com/kunalverma25/wifi-portal/internal/rabbitmq"
	"github.com/kunalverma25/wifi-portal/internal/storage/repository"
)

// Ошибки бизнес-правил платежей.
var (
	// ErrInvalidTransition возвращается при попытке изменить платёж
	// в терминальном статусе или перевести его обратно в pending.
	ErrInvalidTransition = errors.New("invalid payment status transition")
	// ErrPlanMismatch возвращается, когда пара (сумма, период) не
	// соответствует ни одному активному тарифному плану.
	ErrPlanMismatch = errors.New("amount and duration do not match an active plan")
	// ErrScreenshotRequired возвращается для qr_code платежа без скриншота.
	ErrScreenshotRequired = errors.New("screenshot is required for qr_code payments")
	// ErrEmptyReason возвращается при отклонении без причины.
	ErrEmptyReason = errors.New("rejection reason is required")
)

// PaymentRepository определяет методы для работы с платежами в хранилище.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, p models.Payment) (int, error)
	ReadPayment(ctx context.Context, id int) (*models.Payment, error)
	ListPayments(ctx context.Context, filter models.PaymentFilter) ([]*models.Payment, int, error)
	ApprovePayment(ctx context.Context, id int, approvedBy string, notes *string, activatedAt, expiresAt time.Time) (int, error)
	RejectPayment(ctx context.Context, id int, rejectedBy, reason string, notes *string) (int, error)
	RemovePayment(ctx context.Context, id int) (int, error)
	CountPaymentStats(ctx context.Context, userUID *string) (*models.PaymentStats, error)
	FindPaymentsExpiringSoon(ctx context.Context, days int) ([]*models.ExpiringPayment, error)
}

// PlanRepository проверяет соответствие платежа активному тарифу.
type PlanRepository interface {
	FindActivePlan(ctx context.Context, amount float64, durationMonths int) (*models.Plan, error)
}

// UserRepository даёт доступ к владельцу платежа и продлению его подписки.
type UserRepository interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	UpdateUserExpiry(ctx context.Context, uid string, expiresAt time.Time) (int, error)
}

// NotificationRepository создаёт уведомления о решениях по платежам.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n models.Notification) (int, error)
}

// Publisher публикует события для отправки писем.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// ScreenshotStore удаляет загруженные скриншоты по их публичному URL.
type ScreenshotStore interface {
	RemoveByURL(ctx context.Context, fileURL string) error
}

// Service реализует бизнес-логику платежей.
type Service struct {
	payments      PaymentRepository
	plans         PlanRepository
	users         UserRepository
	notifications NotificationRepository
	screens       ScreenshotStore
	publisher     Publisher
	log           *slog.Logger
}

// New создает новый экземпляр Service.
func New(payments PaymentRepository, plans PlanRepository, users UserRepository, notifications NotificationRepository, screens ScreenshotStore, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		payments:      payments,
		plans:         plans,
		users:         users,
		notifications: notifications,
		screens:       screens,
		publisher:     publisher,
		log:           log,
	}
}

// Submit создает заявку на оплату в статусе pending. Пара (сумма, период)
// обязана совпадать с активным тарифом, qr_code платёж обязан иметь скриншот.
func (s *Service) Submit(ctx context.Context, userUID string, req models.DummyPayment) (int, error) {
	if _, err := s.plans.FindActivePlan(ctx, req.Amount, req.DurationMonths); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrPlanMismatch
		}
		return 0, err
	}
	if req.Method == models.PaymentMethodQRCode && req.ScreenshotURL == "" {
		return 0, ErrScreenshotRequired
	}

	p := models.Payment{
		UserUID:        userUID,
		Amount:         req.Amount,
		DurationMonths: req.DurationMonths,
		Method:         req.Method,
		Status:         models.PaymentStatusPending,
	}
	if req.ScreenshotURL != "" {
		p.ScreenshotURL = &req.ScreenshotURL
	}
	if req.UPIReference != "" {
		p.UPIReference = &req.UPIReference
	}
	if req.Notes != "" {
		p.Notes = &req.Notes
	}

	id, err := s.payments.CreatePayment(ctx, p)
	if err != nil {
		return 0, err
	}
	s.log.Info("payment submitted", slog.Int("id", id), slog.String("user_uid", userUID))
	return id, nil
}

// Approve переводит платёж из pending в approved, продлевает подписку
// владельца и уведомляет его. Условный UPDATE в хранилище гарантирует,
// что терминальный платёж не будет изменён даже при гонке двух
// администраторов.
func (s *Service) Approve(ctx context.Context, id int, adminUID string, notes *string) (*models.Payment, error) {
	current, err := s.payments.ReadPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsTerminal() {
		return nil, ErrInvalidTransition
	}

	activatedAt := time.Now().UTC()
	expiresAt := activatedAt.AddDate(0, current.DurationMonths, 0)

	affected, err := s.payments.ApprovePayment(ctx, id, adminUID, notes, activatedAt, expiresAt)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrInvalidTransition
	}

	if _, err := s.users.UpdateUserExpiry(ctx, current.UserUID, expiresAt); err != nil {
		s.log.Error("failed to extend user expiry", sl.Err(err))
	}
	s.notifyDecision(ctx, current, models.PaymentStatusApproved, "")

	s.log.Info("payment approved", slog.Int("id", id), slog.String("admin", adminUID))
	return s.payments.ReadPayment(ctx, id)
}

// Reject переводит платёж из pending в rejected. Причина обязательна.
func (s *Service) Reject(ctx context.Context, id int, adminUID, reason string, notes *string) (*models.Payment, error) {
	if reason == "" {
		return nil, ErrEmptyReason
	}

	current, err := s.payments.ReadPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsTerminal() {
		return nil, ErrInvalidTransition
	}

	affected, err := s.payments.RejectPayment(ctx, id, adminUID, reason, notes)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrInvalidTransition
	}

	s.notifyDecision(ctx, current, models.PaymentStatusRejected, reason)

	s.log.Info("payment rejected", slog.Int("id", id), slog.String("admin", adminUID))
	return s.payments.ReadPayment(ctx, id)
}

// notifyDecision создаёт уведомление владельцу платежа и публикует
// событие отправки письма. Ошибки здесь не прерывают основную операцию.
func (s *Service) notifyDecision(ctx context.Context, p *models.Payment, status, reason string) {
	title := "Payment approved"
	message := fmt.Sprintf("Your payment of %.2f has been approved.", p.Amount)
	if status == models.PaymentStatusRejected {
		title = "Payment rejected"
		message = fmt.Sprintf("Your payment of %.2f has been rejected: %s", p.Amount, reason)
	}

	notification := models.Notification{
		UserUID: p.UserUID,
		Title:   title,
		Message: message,
		Type:    models.NotificationTypePayment,
		Metadata: map[string]string{
			"payment_id": fmt.Sprintf("%d", p.ID),
			"status":     status,
		},
	}
	if _, err := s.notifications.CreateNotification(ctx, notification); err != nil {
		s.log.Error("failed to create notification", sl.Err(err))
	}

	owner, err := s.users.GetUserByUID(ctx, p.UserUID)
	if err != nil {
		s.log.Error("failed to load payment owner", sl.Err(err))
		return
	}
	event := models.PaymentEvent{
		Email:     owner.Email,
		FullName:  owner.FullName(),
		PaymentID: p.ID,
		Amount:    p.Amount,
		Status:    status,
		Reason:    reason,
	}
	if err := s.publisher.Publish(rabbitmq.RoutingKeyPayment, event); err != nil {
		s.log.Error("failed to publish payment event", sl.Err(err))
	}
}

// Remove удаляет платёж вместе с загруженным скриншотом. Доступно
// только администратору. Ошибка очистки хранилища не отменяет удаление
// записи.
func (s *Service) Remove(ctx context.Context, id int) (int, error) {
	current, err := s.payments.ReadPayment(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	affected, err := s.payments.RemovePayment(ctx, id)
	if err != nil {
		return 0, err
	}
	if affected > 0 && current.ScreenshotURL != nil {
		if err := s.screens.RemoveByURL(ctx, *current.ScreenshotURL); err != nil {
			s.log.Warn("failed to remove payment screenshot", sl.Err(err))
		}
	}
	return affected, nil
}

// List возвращает страницу платежей. Обычный пользователь видит только
// свои платежи, администратор — платежи по фильтру.
func (s *Service) List(ctx context.Context, userUID, role string, filter models.PaymentFilter) ([]*models.Payment, int, error) {
	switch role {
	case models.RoleAdmin:
		// Фильтр по пользователю остаётся на усмотрение администратора.
	case models.RoleUser:
		filter.UserUID = &userUID
	default:
		return nil, 0, fmt.Errorf("unknown role %q", role)
	}
	return s.payments.ListPayments(ctx, filter)
}

// Stats возвращает агрегаты по платежам: администратору по всем,
// пользователю по его собственным.
func (s *Service) Stats(ctx context.Context, userUID, role string) (*models.PaymentStats, error) {
	switch role {
	case models.RoleAdmin:
		return s.payments.CountPaymentStats(ctx, nil)
	case models.RoleUser:
		return s.payments.CountPaymentStats(ctx, &userUID)
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

// Upcoming возвращает подписки, оплаченный период которых заканчивается
// в ближайшие days дней.
func (s *Service) Upcoming(ctx context.Context, days int) ([]*models.ExpiringPayment, error) {
	return s.payments.FindPaymentsExpiringSoon(ctx, days)
}
