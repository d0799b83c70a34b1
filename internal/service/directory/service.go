// Package directory is the application service in front of the contact
// directory. It serializes access and reports every operation to logs,
// traces and metrics. Input is validated by the domain types.
package directory

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/davidleathers/contact-directory/internal/domain/contact"
	"github.com/davidleathers/contact-directory/internal/domain/errors"
	"github.com/davidleathers/contact-directory/internal/domain/values"
	"github.com/davidleathers/contact-directory/internal/infrastructure/telemetry"
	"github.com/davidleathers/contact-directory/internal/metrics"
)

// Operation names used for spans and metrics
const (
	OpAddContact  = "add_contact"
	OpAddRecord   = "add_record"
	OpChangePhone = "change_phone"
	OpRemovePhone = "remove_phone"
	OpFindPhone   = "find_phone"
	OpGet         = "get"
	OpDelete      = "delete"
	OpList        = "list"
)

// Service coordinates access to a single in-memory directory
type Service struct {
	logger  *zap.Logger
	metrics *metrics.Registry
	tracer  trace.Tracer

	mu        sync.Mutex
	directory *contact.Directory
}

// Option configures a Service
type Option func(*Service)

// WithTracerProvider makes the service start spans from tp instead of the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracer = tp.Tracer(tracerName)
	}
}

const tracerName = "phonebook/directory"

// NewService creates a service over an empty directory
func NewService(logger *zap.Logger, registry *metrics.Registry, opts ...Option) (*Service, error) {
	if logger == nil {
		return nil, errors.NewValidationError("INVALID_LOGGER", "logger cannot be nil")
	}
	if registry == nil {
		return nil, errors.NewValidationError("INVALID_METRICS", "metrics registry cannot be nil")
	}

	s := &Service{
		logger:    logger.Named("directory"),
		metrics:   registry,
		tracer:    telemetry.Tracer(tracerName),
		directory: contact.NewDirectory(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AddContact adds a phone to the named contact. A new contact is created when
// the name is unknown; if its first phone is rejected the contact is not kept.
func (s *Service) AddContact(ctx context.Context, req AddContactRequest) (resp AddContactResponse, err error) {
	ctx, finish := s.begin(ctx, OpAddContact, attribute.String("contact.name", req.Name))
	defer func() { finish(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, findErr := s.directory.Find(req.Name)
	created := findErr != nil
	if created {
		record = contact.NewRecord(req.Name)
	}

	if err := record.AddPhone(req.Phone); err != nil {
		return AddContactResponse{}, err
	}
	if created {
		if err := s.directory.AddRecord(record); err != nil {
			return AddContactResponse{}, err
		}
	}

	s.refreshSize()
	telemetry.WithContext(ctx, s.logger).Debug("Phone added",
		zap.String("name", req.Name),
		zap.String("record_id", record.ID().String()),
		zap.Bool("created", created))

	return AddContactResponse{Record: newRecordView(record), Created: created}, nil
}

// AddRecord stores a caller-built record, replacing any record with the same name
func (s *Service) AddRecord(ctx context.Context, record *contact.Record) (err error) {
	_, finish := s.begin(ctx, OpAddRecord)
	defer func() { finish(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.directory.AddRecord(record); err != nil {
		return err
	}
	s.refreshSize()
	return nil
}

// ChangePhone replaces a phone on the named contact. The replacement is
// removal followed by addition: an invalid new phone leaves the old one
// removed, and the new phone goes to the end of the list.
func (s *Service) ChangePhone(ctx context.Context, req ChangePhoneRequest) (view RecordView, err error) {
	ctx, finish := s.begin(ctx, OpChangePhone, attribute.String("contact.name", req.Name))
	defer func() { finish(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.directory.Find(req.Name)
	if err != nil {
		return RecordView{}, err
	}

	err = record.EditPhone(req.OldPhone, req.NewPhone)
	s.refreshSize()
	if err != nil {
		return RecordView{}, err
	}

	telemetry.WithContext(ctx, s.logger).Debug("Phone changed", zap.String("name", req.Name))
	return newRecordView(record), nil
}

// RemovePhone removes the first matching phone from the named contact
func (s *Service) RemovePhone(ctx context.Context, req PhoneRequest) (err error) {
	_, finish := s.begin(ctx, OpRemovePhone, attribute.String("contact.name", req.Name))
	defer func() { finish(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.directory.Find(req.Name)
	if err != nil {
		return err
	}
	if err := record.RemovePhone(req.Phone); err != nil {
		return err
	}
	s.refreshSize()
	return nil
}

// FindPhone looks up a phone on the named contact. An unknown contact is an
// error; an unknown phone is reported through the boolean.
func (s *Service) FindPhone(ctx context.Context, req PhoneRequest) (phone values.PhoneNumber, found bool, err error) {
	_, finish := s.begin(ctx, OpFindPhone, attribute.String("contact.name", req.Name))
	defer func() { finish(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.directory.Find(req.Name)
	if err != nil {
		return values.PhoneNumber{}, false, err
	}
	phone, found = record.FindPhone(req.Phone)
	return phone, found, nil
}

// Get returns a snapshot of the named contact
func (s *Service) Get(ctx context.Context, name string) (view RecordView, err error) {
	_, finish := s.begin(ctx, OpGet, attribute.String("contact.name", name))
	defer func() { finish(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.directory.Find(name)
	if err != nil {
		return RecordView{}, err
	}
	return newRecordView(record), nil
}

// Phones returns the phones of the named contact in insertion order
func (s *Service) Phones(ctx context.Context, name string) ([]values.PhoneNumber, error) {
	view, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	phones := make([]values.PhoneNumber, len(view.Phones))
	for i, p := range view.Phones {
		phones[i] = values.MustNewPhoneNumber(p)
	}
	return phones, nil
}

// Delete removes the named contact
func (s *Service) Delete(ctx context.Context, name string) (err error) {
	ctx, finish := s.begin(ctx, OpDelete, attribute.String("contact.name", name))
	defer func() { finish(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.directory.Delete(name); err != nil {
		return err
	}
	s.refreshSize()
	telemetry.WithContext(ctx, s.logger).Debug("Contact deleted", zap.String("name", name))
	return nil
}

// List returns snapshots of all contacts in insertion order
func (s *Service) List(ctx context.Context) []RecordView {
	_, finish := s.begin(ctx, OpList)
	defer finish(nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]RecordView, 0, s.directory.Len())
	for _, record := range s.directory.All() {
		views = append(views, newRecordView(record))
	}
	return views
}

// Metrics returns the registry the service reports to
func (s *Service) Metrics() *metrics.Registry {
	return s.metrics
}

// begin opens a span for op and returns a finisher that records the outcome
func (s *Service) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "directory."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		defer span.End()

		result := resultOf(err)
		s.metrics.RecordOperation(op, result)
		span.SetAttributes(attribute.String("result", result))
		if err == nil {
			return
		}

		telemetry.RecordError(span, err)
		log := telemetry.WithContext(ctx, s.logger)
		if result == metrics.ResultError {
			log.Error("Directory operation failed", zap.String("operation", op), zap.Error(err))
			return
		}
		log.Warn("Directory operation rejected", zap.String("operation", op), zap.Error(err))
	}
}

// refreshSize updates the size gauges. Callers hold s.mu.
func (s *Service) refreshSize() {
	phones := 0
	for _, record := range s.directory.All() {
		phones += len(record.Phones())
	}
	s.metrics.SetSize(s.directory.Len(), phones)
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.IsValidation(err):
		return metrics.ResultValidation
	case errors.IsNotFound(err):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}
