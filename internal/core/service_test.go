package core

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"residency/internal/query"
	"residency/pkg/domain"
)

type metricsCall struct {
	op       string
	success  bool
	duration time.Duration
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, duration time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success, duration: duration})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type spanRecord struct {
	op  string
	err error
}

type captureTracer struct {
	started []string
	ended   []spanRecord
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	c.started = append(c.started, op)
	return ctx, &captureSpan{tracer: c, op: op}
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

type logLine struct {
	level string
	msg   string
	args  []any
}

type captureLogger struct {
	lines []logLine
}

func (c *captureLogger) Debug(msg string, args ...any) { c.add("debug", msg, args) }
func (c *captureLogger) Info(msg string, args ...any)  { c.add("info", msg, args) }
func (c *captureLogger) Warn(msg string, args ...any)  { c.add("warn", msg, args) }
func (c *captureLogger) Error(msg string, args ...any) { c.add("error", msg, args) }

func (c *captureLogger) add(level, msg string, args []any) {
	c.lines = append(c.lines, logLine{level: level, msg: msg, args: args})
}

func (c *captureLogger) count(level string) int {
	n := 0
	for _, l := range c.lines {
		if l.level == level {
			n++
		}
	}
	return n
}

func TestServiceInstrumentsOperations(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	tracer := &captureTracer{}
	logs := &captureLogger{}
	f := newFixture(t, WithMetricsRecorder(metrics), WithTracer(tracer), WithLogger(logs))
	ctx := t.Context()

	f.household(t, "HK001")
	_, _, err := f.svc.CreateHousehold(ctx, domain.Household{HouseholdCode: "HK001", Address: "dup"})
	require.Error(t, err)
	_, err = f.svc.GetHousehold(ctx, "missing")
	require.Error(t, err)

	assert.True(t, metrics.has("create_household", true))
	assert.True(t, metrics.has("create_household", false))
	assert.True(t, metrics.has("get_household", false))
	assert.Equal(t, []string{"create_household", "create_household", "get_household"}, tracer.started)
	require.Len(t, tracer.ended, 3)
	assert.NoError(t, tracer.ended[0].err)
	assert.True(t, domain.IsConflict(tracer.ended[1].err))
	assert.Equal(t, 1, logs.count("debug"))
	assert.Equal(t, 2, logs.count("warn"))
	assert.Zero(t, logs.count("error"))

	f.adapter.FailSaves(errors.New("disk full"))
	_, _, err = f.svc.CreateHousehold(ctx, domain.Household{HouseholdCode: "HK002", Address: "x"})
	require.Error(t, err)
	assert.Equal(t, 1, logs.count("error"))
}

func TestServiceAuditsActorMutations(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "admin", domain.RoleAdmin)
	ctx := WithActor(t.Context(), admin.ID)

	hk, _, err := f.svc.CreateHousehold(ctx, domain.Household{HouseholdCode: "HK010", Address: "10 Lane"})
	require.NoError(t, err)
	_, _, err = f.svc.CreateResident(ctx, domain.Resident{FullName: "Head", HouseholdID: &hk.ID, IsHouseholdHead: true})
	require.NoError(t, err)
	_, _, err = f.svc.CreateResident(ctx, domain.Resident{FullName: "Child", HouseholdID: &hk.ID})
	require.NoError(t, err)
	_, err = f.svc.DeleteHousehold(ctx, hk.ID)
	require.NoError(t, err)

	logs := f.store.ExportState().ActivityLogs
	require.Len(t, logs, 4)
	for _, l := range logs {
		assert.Equal(t, admin.ID, l.UserID)
		require.NotNil(t, l.UserName)
		assert.Equal(t, "User admin", *l.UserName)
	}
	assert.Equal(t, "create", logs[0].Action)
	require.NotNil(t, logs[0].EntityType)
	assert.Equal(t, string(domain.EntityHousehold), *logs[0].EntityType)

	last := logs[3]
	assert.Equal(t, "delete", last.Action)
	require.NotNil(t, last.EntityID)
	assert.Equal(t, hk.ID, *last.EntityID)
	require.NotNil(t, last.Details)
	var details map[string]any
	require.NoError(t, json.Unmarshal([]byte(*last.Details), &details))
	assert.Equal(t, "HK010", details["householdCode"])
	assert.EqualValues(t, 2, details["unassigned"])
}

func TestServiceSkipsAuditWithoutActor(t *testing.T) {
	f := newFixture(t)
	f.household(t, "HK011")
	assert.Empty(t, f.store.ExportState().ActivityLogs)
}

func TestFailedMutationLeavesNoAuditEntry(t *testing.T) {
	f := newFixture(t)
	ctx := WithActor(t.Context(), "someone")
	_, _, err := f.svc.CreateHousehold(ctx, domain.Household{HouseholdCode: "HK012"})
	require.Error(t, err)
	assert.Empty(t, f.store.ExportState().ActivityLogs)
}

func TestUserLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	u := f.user(t, "thanhvien", domain.RoleMember)

	byName, err := f.svc.UserByUsername(ctx, "thanhvien")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = f.svc.UserByUsername(ctx, "nobody")
	assert.True(t, domain.IsNotFound(err))

	updated, _, err := f.svc.UpdateUser(ctx, u.ID, UserUpdate{Role: domain.Set(domain.RolePolice), Phone: domain.Set(domain.Ptr("0901"))})
	require.NoError(t, err)
	assert.Equal(t, domain.RolePolice, updated.Role)
	assert.Equal(t, "0901", *updated.Phone)

	_, err = f.svc.SetUserPassword(ctx, u.ID, "new-hash")
	require.NoError(t, err)
	stored, err := f.svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", stored.PasswordHash)

	withKey, _, err := f.svc.SetUserAPIKey(ctx, u.ID, domain.Ptr("AIzaKey"))
	require.NoError(t, err)
	require.NotNil(t, withKey.APIKey)

	deactivated, _, err := f.svc.DeactivateUser(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	_, err = f.svc.DeleteUser(ctx, u.ID)
	require.NoError(t, err)
	_, err = f.svc.GetUser(ctx, u.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestNotificationCreatorName(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	chief := f.user(t, "truongkp", domain.RoleChief)

	n, _, err := f.svc.CreateNotification(ctx, domain.Notification{Title: "Họp", Content: "Họp tổ", CreatedBy: &chief.ID})
	require.NoError(t, err)
	require.NotNil(t, n.CreatedByName)
	assert.Equal(t, "User truongkp", *n.CreatedByName)
	assert.Equal(t, domain.NotificationGeneral, n.Type)
	assert.Equal(t, domain.TargetAll, n.TargetType)

	updated, _, err := f.svc.UpdateNotification(ctx, n.ID, NotificationUpdate{IsPinned: domain.Set(true), Priority: domain.Set(domain.PriorityHigh)})
	require.NoError(t, err)
	assert.True(t, updated.IsPinned)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)

	_, _, err = f.svc.CreateNotification(ctx, domain.Notification{Title: "x", Content: "y", Type: "gossip"})
	assert.True(t, domain.IsValidation(err))
}

func TestServiceQueriesUseStoreClock(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	hk := f.household(t, "HK020")
	_, _, err := f.svc.CreateResident(ctx, domain.Resident{FullName: "Boundary", HouseholdID: &hk.ID, BirthDate: domain.Ptr("2006-10-19")})
	require.NoError(t, err)

	page, err := f.svc.ListResidents(ctx, query.ResidentFilter{}, query.Pagination{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].Age)
	assert.Equal(t, 20, *page.Items[0].Age)
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusMetricsRecorder(reg)
	f := newFixture(t, WithMetricsRecorder(rec))

	f.household(t, "HK030")
	_, err := f.svc.GetHousehold(t.Context(), "missing")
	require.Error(t, err)
	rec.Observe(t.Context(), "", true, time.Second)

	assert.InDelta(t, 1, testutil.ToFloat64(rec.total.WithLabelValues("create_household", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.total.WithLabelValues("get_household", "error")), 0)

	expected := `
# HELP residency_store_operations_total Total record store service operations by outcome
# TYPE residency_store_operations_total counter
residency_store_operations_total{operation="create_household",status="success"} 1
residency_store_operations_total{operation="get_household",status="error"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "residency_store_operations_total"))
	assert.Equal(t, 2, testutil.CollectAndCount(rec.duration))
}

func TestOTelTracerRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	f := newFixture(t, WithTracer(NewOTelTracer(provider)))
	f.household(t, "HK040")
	_, err := f.svc.GetHousehold(t.Context(), "missing")
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "core.create_household", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, "core.get_household", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.NotEmpty(t, spans[1].Events())
}

func TestInMemoryServiceSkipsPersistence(t *testing.T) {
	svc := NewInMemoryService(WithClock(func() time.Time { return testNow }))
	h, _, err := svc.CreateHousehold(t.Context(), domain.Household{HouseholdCode: "HK050", Address: "x"})
	require.NoError(t, err)
	assert.Equal(t, testNow, h.CreatedAt)
	ok, err := svc.Store().Load(t.Context())
	require.NoError(t, err)
	assert.False(t, ok)
}
