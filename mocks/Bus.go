package mocks

import (
	"context"

	"github.com/Exquve/BluetoothARGBController-APP/transport/bluez"
	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/mock"
)

type Bus struct {
	mock.Mock
}

// ManagedObjects provides a mock function with given fields: ctx
func (_m *Bus) ManagedObjects(ctx context.Context) (bluez.Objects, error) {
	ret := _m.Called(ctx)

	var r0 bluez.Objects
	if rf, ok := ret.Get(0).(func(context.Context) bluez.Objects); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(bluez.Objects)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Call provides a mock function with given fields: ctx, path, method, args
func (_m *Bus) Call(ctx context.Context, path dbus.ObjectPath, method string, args ...interface{}) error {
	var _ca []interface{}
	_ca = append(_ca, ctx, path, method)
	_ca = append(_ca, args...)
	ret := _m.Called(_ca...)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, dbus.ObjectPath, string, ...interface{}) error); ok {
		r0 = rf(ctx, path, method, args...)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Signals provides a mock function with given fields: ctx
func (_m *Bus) Signals(ctx context.Context) (<-chan *dbus.Signal, error) {
	ret := _m.Called(ctx)

	var r0 <-chan *dbus.Signal
	if rf, ok := ret.Get(0).(func(context.Context) <-chan *dbus.Signal); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		switch ch := ret.Get(0).(type) {
		case <-chan *dbus.Signal:
			r0 = ch
		case chan *dbus.Signal:
			r0 = ch
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Close provides a mock function with given fields:
func (_m *Bus) Close() error {
	ret := _m.Called()

	var r0 error
	if rf, ok := ret.Get(0).(func() error); ok {
		r0 = rf()
	} else {
		r0 = ret.Error(0)
	}

	return r0
}
