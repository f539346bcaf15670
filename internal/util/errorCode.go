package util

type HwStressCmdError = int

// general
const (
	ErrorSuccess       HwStressCmdError = 0
	ErrorExecuteFailed HwStressCmdError = 1
	ErrorCmdArg        HwStressCmdError = 2
	ErrorDependency    HwStressCmdError = 3
	ErrorBusy          HwStressCmdError = 4
	ErrorLogFile       HwStressCmdError = 5
)
