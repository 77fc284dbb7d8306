package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	jobA := &stubJob{name: "payment_reconcile"}
	jobB := &stubJob{name: "outbox_retention"}
	registry := NewRegistry(jobA, nil, jobB)

	jobs := registry.Jobs()
	require.Len(t, jobs, 2)
	assert.Same(t, jobA, jobs[0])
	assert.Same(t, jobB, jobs[1])
	assert.Equal(t, []string{"payment_reconcile", "outbox_retention"}, registry.Names())

	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0])
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	registry := NewRegistry(&stubJob{name: "payment_reconcile"})
	assert.Error(t, registry.Register(&stubJob{name: "payment_reconcile"}))
	assert.Panics(t, func() {
		NewRegistry(&stubJob{name: "x"}, &stubJob{name: "x"})
	})
}

func TestRegistryOnly(t *testing.T) {
	registry := NewRegistry(&stubJob{name: "payment_reconcile"}, &stubJob{name: "outbox_retention"})

	all, err := registry.Only()
	require.NoError(t, err)
	assert.Len(t, all.Jobs(), 2)

	sub, err := registry.Only(" outbox_retention ")
	require.NoError(t, err)
	assert.Equal(t, []string{"outbox_retention"}, sub.Names())

	_, err = registry.Only("license_expiry")
	assert.ErrorContains(t, err, "unknown cron job")
}
