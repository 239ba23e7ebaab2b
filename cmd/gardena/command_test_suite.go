//go:build test

package main

import (
	"bytes"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/suite"

	"github.com/srg/gardena/internal/device"
	"github.com/srg/gardena/internal/gardena"
	"github.com/srg/gardena/internal/testutils"
	"github.com/srg/gardena/internal/testutils/mocks"
	"github.com/srg/gardena/pkg/config"
)

// TestDeviceAddress is the address commands are pointed at.
const TestDeviceAddress = "C8:B9:61:00:00:01"

// CommandTestSuite runs commands against a FakeStack holding a water
// computer and a mocked scanning adapter.
type CommandTestSuite struct {
	suite.Suite

	Stack    *testutils.FakeStack
	Scanning *mocks.MockScanningDevice

	origStack    func(*config.Config, *logrus.Logger) device.Stack
	origScanning func() (device.ScanningDevice, error)
}

func (s *CommandTestSuite) SetupSuite() {
	s.origStack = newStack
	s.origScanning = newScanningDevice
}

func (s *CommandTestSuite) TearDownSuite() {
	newStack = s.origStack
	newScanningDevice = s.origScanning
}

func (s *CommandTestSuite) SetupTest() {
	s.Stack = testutils.NewFakeStack().
		WithCharacteristic("98bd0b10-0b0e-421a-84e5-ddbf75dc6de4", gardena.UnixTimestamp.UUID(), "read,write", []byte{0, 0, 0, 0}).
		WithCharacteristic("98bd0b10-0b0e-421a-84e5-ddbf75dc6de4", gardena.CustomDeviceName.UUID(), "read,write", []byte("Garden\x00")).
		WithCharacteristic("98bd180f-0b0e-421a-84e5-ddbf75dc6de4", gardena.BatteryLevel.UUID(), "read", []byte{80}).
		WithCharacteristic("98bd0f10-0b0e-421a-84e5-ddbf75dc6de4", gardena.ValveManualWateringTime.UUID(), "read,write", []byte{0x2c, 0x01, 0, 0})
	s.Scanning = &mocks.MockScanningDevice{}

	newStack = func(*config.Config, *logrus.Logger) device.Stack { return s.Stack }
	newScanningDevice = func() (device.ScanningDevice, error) { return s.Scanning, nil }

	s.resetFlags()
}

// resetFlags puts every flag back to its default so values never leak
// from one command run into the next.
func (s *CommandTestSuite) resetFlags() {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			s.Require().NoError(sv.Replace(nil))
		} else {
			s.Require().NoError(f.Value.Set(f.DefValue))
		}
		f.Changed = false
	}

	rootCmd.PersistentFlags().VisitAll(reset)
	rootCmd.Flags().VisitAll(reset)
	for _, cmd := range rootCmd.Commands() {
		cmd.Flags().VisitAll(reset)
	}
}

// ExecuteCommand runs the root command with args and returns what it
// printed to stdout and stderr.
func (s *CommandTestSuite) ExecuteCommand(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	_, err := rootCmd.ExecuteC()
	return stdout.String(), stderr.String(), err
}

// Command returns the subcommand named name.
func (s *CommandTestSuite) Command(name string) *cobra.Command {
	cmd, _, err := rootCmd.Find([]string{name})
	s.Require().NoError(err)
	return cmd
}
