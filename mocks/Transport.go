package mocks

import (
	"context"

	"github.com/Exquve/BluetoothARGBController-APP/common"
	"github.com/stretchr/testify/mock"
)

type Transport struct {
	mock.Mock
}

// Scan provides a mock function with given fields: ctx
func (_m *Transport) Scan(ctx context.Context) ([]common.Peripheral, error) {
	ret := _m.Called(ctx)

	var r0 []common.Peripheral
	if rf, ok := ret.Get(0).(func(context.Context) []common.Peripheral); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]common.Peripheral)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Connect provides a mock function with given fields: ctx, id
func (_m *Transport) Connect(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, id)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Disconnect provides a mock function with given fields:
func (_m *Transport) Disconnect() error {
	ret := _m.Called()

	var r0 error
	if rf, ok := ret.Get(0).(func() error); ok {
		r0 = rf()
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// DiscoverServices provides a mock function with given fields: ctx
func (_m *Transport) DiscoverServices(ctx context.Context) ([]common.Service, error) {
	ret := _m.Called(ctx)

	var r0 []common.Service
	if rf, ok := ret.Get(0).(func(context.Context) []common.Service); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]common.Service)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// DiscoverCharacteristics provides a mock function with given fields: ctx, svc
func (_m *Transport) DiscoverCharacteristics(ctx context.Context, svc common.Service) ([]common.Characteristic, error) {
	ret := _m.Called(ctx, svc)

	var r0 []common.Characteristic
	if rf, ok := ret.Get(0).(func(context.Context, common.Service) []common.Characteristic); ok {
		r0 = rf(ctx, svc)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]common.Characteristic)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, common.Service) error); ok {
		r1 = rf(ctx, svc)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Write provides a mock function with given fields: ctx, c, data, ack
func (_m *Transport) Write(ctx context.Context, c common.Characteristic, data []byte, ack bool) error {
	ret := _m.Called(ctx, c, data, ack)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, common.Characteristic, []byte, bool) error); ok {
		r0 = rf(ctx, c, data, ack)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// SetNotify provides a mock function with given fields: ctx, c, enable
func (_m *Transport) SetNotify(ctx context.Context, c common.Characteristic, enable bool) error {
	ret := _m.Called(ctx, c, enable)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, common.Characteristic, bool) error); ok {
		r0 = rf(ctx, c, enable)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Notifications provides a mock function with given fields:
func (_m *Transport) Notifications() <-chan common.Notification {
	ret := _m.Called()

	var r0 <-chan common.Notification
	if rf, ok := ret.Get(0).(func() <-chan common.Notification); ok {
		r0 = rf()
	} else if ret.Get(0) != nil {
		switch ch := ret.Get(0).(type) {
		case chan common.Notification:
			r0 = ch
		case <-chan common.Notification:
			r0 = ch
		}
	}

	return r0
}
