// Package metrics provides Prometheus observability metrics for the workforce planner.
// It includes plan-level metrics for business visibility and solver/parser metrics for
// operational health.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// PLAN METRICS - Business Impact Visibility
// =============================================================================

// PlanObjective is the objective value of the last optimal plan.
var PlanObjective = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "objective_value",
	Help:      "Objective value (total cost) of the last optimal hiring plan",
})

// PlanHiresTotal is the number of trainees hired over the horizon.
var PlanHiresTotal = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "hires_total",
	Help:      "Number of trainees hired across all departments and months",
})

// PlanUnderemployedTotal is the number of underemployment units used over the horizon.
var PlanUnderemployedTotal = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "underemployed_units_total",
	Help:      "Underemployment units used to cover staffing shortfalls",
})

// PlanCostByComponent breaks the objective down by cost component.
var PlanCostByComponent = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "cost_by_component",
	Help:      "Objective cost broken down into training, salary and understaffing",
}, []string{"component"})

// MonthsWithShortfall counts department-months that rely on underemployment units.
var MonthsWithShortfall = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "months_with_shortfall",
	Help:      "Department-months where hires and staff did not cover the target hours",
})

// =============================================================================
// OPERATIONAL METRICS - Solver and Input Health
// =============================================================================

// SolveOutcomesTotal counts solves by outcome.
var SolveOutcomesTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "solver",
	Name:      "outcomes_total",
	Help:      "Solver runs by outcome (optimal, infeasible, unbounded, error)",
}, []string{"outcome"})

// SolveDurationSeconds tracks the wall time of a solve.
var SolveDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "solver",
	Name:      "duration_seconds",
	Help:      "Time taken by the solver",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
})

// SolveNodes tracks the branch-and-bound nodes explored per solve.
var SolveNodes = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "solver",
	Name:      "nodes",
	Help:      "Branch-and-bound nodes explored per solve",
	Buckets:   []float64{1, 10, 100, 1000, 10000, 100000},
})

// ModelSize tracks variables and constraints of the last model built.
var ModelSize = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "model",
	Name:      "size",
	Help:      "Number of variables and constraints of the last model",
}, []string{"kind"})

// ValidationErrorsTotal counts rejected scenarios.
var ValidationErrorsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "model",
	Name:      "validation_errors_total",
	Help:      "Scenarios rejected before model construction",
})

// ParserErrorsTotal tracks parse errors by error type.
var ParserErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "errors_total",
	Help:      "Total parse errors by error type",
}, []string{"error_type"})

// ParserRecordsTotal tracks total records successfully parsed.
var ParserRecordsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "records_total",
	Help:      "Total CSV records successfully parsed",
})

// =============================================================================
// Helper Functions
// =============================================================================

// ResetPlanGauges resets all plan gauges before a new run.
func ResetPlanGauges() {
	PlanObjective.Set(0)
	PlanHiresTotal.Set(0)
	PlanUnderemployedTotal.Set(0)
	MonthsWithShortfall.Set(0)
	PlanCostByComponent.Reset()
}

const pushTimeout = 30 * time.Second

// statusDoer remembers the status code of the last Pushgateway response.
type statusDoer struct {
	client *http.Client
	status int
}

func (d *statusDoer) Do(req *http.Request) (*http.Response, error) {
	d.status = 0
	resp, err := d.client.Do(req)
	if resp != nil {
		d.status = resp.StatusCode
	}
	return resp, err
}

// retryable reports whether a push rejected with status may succeed later.
func retryable(status int) bool {
	if status < 400 || status >= 500 {
		return true
	}
	return status == http.StatusRequestTimeout || status == http.StatusTooManyRequests
}

// Push sends the registry to a Pushgateway, retrying with exponential backoff for up to
// pushTimeout. A malformed URL or a 4xx rejection fails at once.
func Push(ctx context.Context, gatewayURL, job string) error {
	u, err := url.Parse(gatewayURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("push metrics: invalid pushgateway URL %q", gatewayURL)
	}
	if job == "" {
		return fmt.Errorf("push metrics: job name is empty")
	}

	doer := &statusDoer{client: http.DefaultClient}
	pusher := push.New(gatewayURL, job).Gatherer(Registry).Client(doer)
	op := func() error {
		err := pusher.PushContext(ctx)
		if err != nil && !retryable(doer.status) {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = pushTimeout
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
