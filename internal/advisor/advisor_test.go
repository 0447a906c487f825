package advisor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fieldline/fieldline/internal/advisor"
	customerdomain "github.com/fieldline/fieldline/internal/customer/domain"
	inventorydomain "github.com/fieldline/fieldline/internal/inventory/domain"
	jobdomain "github.com/fieldline/fieldline/internal/job/domain"
	techniciandomain "github.com/fieldline/fieldline/internal/technician/domain"
)

type fakeClock struct {
	now time.Time
}

func (f fakeClock) Now() time.Time { return f.now }

// stubClient returns a canned model response, or an error when set.
type stubClient struct {
	response string
	err      error
	calls    int
}

func (s *stubClient) Complete(ctx context.Context, req advisor.CompletionRequest) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

type fakeCustomerSvc struct {
	customers []customerdomain.Customer
}

func (f *fakeCustomerSvc) Create(context.Context, customerdomain.CreateCustomerRequest) (customerdomain.Customer, error) {
	return customerdomain.Customer{}, errors.New("not implemented")
}
func (f *fakeCustomerSvc) Update(context.Context, customerdomain.UpdateCustomerRequest) (customerdomain.Customer, error) {
	return customerdomain.Customer{}, errors.New("not implemented")
}
func (f *fakeCustomerSvc) List(context.Context, customerdomain.ListCustomerRequest) (customerdomain.ListCustomerResponse, error) {
	return customerdomain.ListCustomerResponse{}, nil
}
func (f *fakeCustomerSvc) ListAll(context.Context) ([]customerdomain.Customer, error) {
	return f.customers, nil
}
func (f *fakeCustomerSvc) GetByID(context.Context, customerdomain.GetCustomerRequest) (customerdomain.Customer, error) {
	return customerdomain.Customer{}, customerdomain.ErrNotFound
}

type fakeInventorySvc struct {
	items []inventorydomain.Item
}

func (f *fakeInventorySvc) Create(context.Context, inventorydomain.CreateItemRequest) (inventorydomain.Item, error) {
	return inventorydomain.Item{}, errors.New("not implemented")
}
func (f *fakeInventorySvc) List(context.Context, inventorydomain.ListItemRequest) (inventorydomain.ListItemResponse, error) {
	return inventorydomain.ListItemResponse{}, nil
}
func (f *fakeInventorySvc) ListAll(context.Context) ([]inventorydomain.Item, error) {
	return f.items, nil
}
func (f *fakeInventorySvc) GetByID(context.Context, inventorydomain.GetItemRequest) (inventorydomain.Item, error) {
	return inventorydomain.Item{}, inventorydomain.ErrNotFound
}
func (f *fakeInventorySvc) AdjustStock(context.Context, inventorydomain.AdjustStockRequest) (inventorydomain.Item, error) {
	return inventorydomain.Item{}, errors.New("not implemented")
}

type fakeJobSvc struct {
	jobs map[string]jobdomain.Job
}

func (f *fakeJobSvc) Create(context.Context, jobdomain.CreateJobRequest) (jobdomain.Job, error) {
	return jobdomain.Job{}, errors.New("not implemented")
}
func (f *fakeJobSvc) List(context.Context, jobdomain.ListJobRequest) (jobdomain.ListJobResponse, error) {
	return jobdomain.ListJobResponse{}, nil
}
func (f *fakeJobSvc) GetByID(ctx context.Context, req jobdomain.GetJobRequest) (jobdomain.Job, error) {
	job, ok := f.jobs[req.ID]
	if !ok {
		return jobdomain.Job{}, jobdomain.ErrNotFound
	}
	return job, nil
}
func (f *fakeJobSvc) Assign(context.Context, jobdomain.AssignJobRequest) (jobdomain.Job, error) {
	return jobdomain.Job{}, errors.New("not implemented")
}
func (f *fakeJobSvc) UpdateStatus(context.Context, jobdomain.UpdateJobStatusRequest) (jobdomain.Job, error) {
	return jobdomain.Job{}, errors.New("not implemented")
}

type fakeTechnicianSvc struct {
	active []techniciandomain.Technician
}

func (f *fakeTechnicianSvc) Create(context.Context, techniciandomain.CreateTechnicianRequest) (techniciandomain.Technician, error) {
	return techniciandomain.Technician{}, errors.New("not implemented")
}
func (f *fakeTechnicianSvc) List(context.Context, techniciandomain.ListTechnicianRequest) (techniciandomain.ListTechnicianResponse, error) {
	return techniciandomain.ListTechnicianResponse{}, nil
}
func (f *fakeTechnicianSvc) ListActive(context.Context) ([]techniciandomain.Technician, error) {
	return f.active, nil
}
func (f *fakeTechnicianSvc) GetByID(context.Context, techniciandomain.GetTechnicianRequest) (techniciandomain.Technician, error) {
	return techniciandomain.Technician{}, techniciandomain.ErrNotFound
}
func (f *fakeTechnicianSvc) SetActive(context.Context, techniciandomain.SetActiveRequest) (techniciandomain.Technician, error) {
	return techniciandomain.Technician{}, errors.New("not implemented")
}

type advisorFixture struct {
	customers   *fakeCustomerSvc
	inventory   *fakeInventorySvc
	jobs        *fakeJobSvc
	technicians *fakeTechnicianSvc
	clock       fakeClock
}

func newAdvisorFixture() *advisorFixture {
	return &advisorFixture{
		customers:   &fakeCustomerSvc{},
		inventory:   &fakeInventorySvc{},
		jobs:        &fakeJobSvc{jobs: map[string]jobdomain.Job{}},
		technicians: &fakeTechnicianSvc{},
		clock:       fakeClock{now: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)},
	}
}

func (f *advisorFixture) service(t *testing.T, client advisor.Client) *advisor.Service {
	t.Helper()
	return advisor.New(advisor.Params{
		Log:         zap.NewNop(),
		Clock:       f.clock,
		Client:      client,
		Customers:   f.customers,
		Inventory:   f.inventory,
		Jobs:        f.jobs,
		Technicians: f.technicians,
	})
}
