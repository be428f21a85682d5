// Package mocks holds testify mocks of the store and publisher ports.
package mocks

import (
	context "context"

	model "residence/internal/model"

	mock "github.com/stretchr/testify/mock"
)

// ListingStore is a mock type for the ListingStore type
type ListingStore struct {
	mock.Mock
}

// QueryFlats provides a mock function with given fields: ctx, q
func (_m *ListingStore) QueryFlats(ctx context.Context, q model.FlatQuery) (*model.FlatPage, error) {
	ret := _m.Called(ctx, q)

	var r0 *model.FlatPage
	if rf, ok := ret.Get(0).(func(context.Context, model.FlatQuery) *model.FlatPage); ok {
		r0 = rf(ctx, q)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.FlatPage)
	}

	return r0, ret.Error(1)
}

// GetFlat provides a mock function with given fields: ctx, id
func (_m *ListingStore) GetFlat(ctx context.Context, id string) (*model.Flat, error) {
	ret := _m.Called(ctx, id)

	var r0 *model.Flat
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Flat)
	}

	return r0, ret.Error(1)
}

// ListTestimonials provides a mock function with given fields: ctx
func (_m *ListingStore) ListTestimonials(ctx context.Context) ([]model.Testimonial, error) {
	ret := _m.Called(ctx)

	var r0 []model.Testimonial
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Testimonial)
	}

	return r0, ret.Error(1)
}

// GetApartmentDetails provides a mock function with given fields: ctx
func (_m *ListingStore) GetApartmentDetails(ctx context.Context) (*model.ApartmentDetails, error) {
	ret := _m.Called(ctx)

	var r0 *model.ApartmentDetails
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.ApartmentDetails)
	}

	return r0, ret.Error(1)
}

// NewListingStore creates a new instance of ListingStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewListingStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *ListingStore {
	m := &ListingStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
