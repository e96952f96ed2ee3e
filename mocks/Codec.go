package mocks

import (
	"github.com/Exquve/BluetoothARGBController-APP/common"
	"github.com/stretchr/testify/mock"
)

type Codec struct {
	mock.Mock
}

// Format provides a mock function with given fields:
func (_m *Codec) Format() string {
	ret := _m.Called()

	var r0 string
	if rf, ok := ret.Get(0).(func() string); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(string)
	}

	return r0
}

// Encode provides a mock function with given fields: cmd
func (_m *Codec) Encode(cmd common.Command) ([]byte, error) {
	ret := _m.Called(cmd)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(common.Command) []byte); ok {
		r0 = rf(cmd)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(common.Command) error); ok {
		r1 = rf(cmd)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
