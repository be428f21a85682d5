package mocks

import (
	context "context"

	model "residence/internal/model"

	mock "github.com/stretchr/testify/mock"
)

// InquiryStore is a mock type for the InquiryStore type
type InquiryStore struct {
	mock.Mock
}

// AddInquiry provides a mock function with given fields: ctx, inquiry
func (_m *InquiryStore) AddInquiry(ctx context.Context, inquiry *model.Inquiry) error {
	ret := _m.Called(ctx, inquiry)

	if rf, ok := ret.Get(0).(func(context.Context, *model.Inquiry) error); ok {
		return rf(ctx, inquiry)
	}
	return ret.Error(0)
}

// NewInquiryStore creates a new instance of InquiryStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewInquiryStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *InquiryStore {
	m := &InquiryStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
