package scanner_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srg/gardena/internal/device"
	"github.com/srg/gardena/internal/testutils/mocks"
	"github.com/srg/gardena/scanner"
)

func TestScan_AdapterFailure(t *testing.T) {
	dev := &mocks.MockScanningDevice{}
	dev.On("Scan", mock.Anything, false, mock.Anything).Return(device.ErrBluetoothOff)

	sc, err := scanner.NewScanner(dev, nil)
	require.NoError(t, err)

	var phases []string
	_, err = sc.Scan(context.Background(), nil, func(p string) { phases = append(phases, p) })
	require.Error(t, err)
	assert.ErrorIs(t, err, device.ErrBluetoothOff)
	assert.Contains(t, err.Error(), "scan failed")
	assert.Equal(t, []string{"Scanning", "Failed"}, phases)
}

func TestScan_StopsOnDuration(t *testing.T) {
	dev := &mocks.MockScanningDevice{}
	dev.On("Scan", mock.Anything, true, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(context.DeadlineExceeded)

	sc, err := scanner.NewScanner(dev, nil)
	require.NoError(t, err)

	start := time.Now()
	devices, err := sc.Scan(context.Background(), &scanner.ScanOptions{Duration: 20 * time.Millisecond}, nil)
	require.NoError(t, err, "an elapsed scan window MUST NOT be an error")
	assert.Empty(t, devices)
	assert.Less(t, time.Since(start), 2*time.Second)
	dev.AssertExpectations(t)
}

func TestScan_Cancelled(t *testing.T) {
	dev := &mocks.MockScanningDevice{}
	dev.On("Scan", mock.Anything, false, mock.Anything).Return(context.Canceled)

	sc, err := scanner.NewScanner(dev, nil)
	require.NoError(t, err)

	_, err = sc.Scan(context.Background(), nil, nil)
	assert.NoError(t, err)
}

func TestDeviceEventType_String(t *testing.T) {
	assert.Equal(t, "new", scanner.EventNew.String())
	assert.Equal(t, "updated", scanner.EventUpdated.String())
}
