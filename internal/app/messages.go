package app

import (
	"time"

	"parley/internal/types"
)

type tickMsg time.Time

type identityResolvedMsg struct {
	principal string
	err       error
}

type signedInMsg struct {
	principal string
	err       error
}

type signedOutMsg struct {
	err error
}

type profileSavedMsg struct {
	displayName string
	err         error
}

type messageSentMsg struct {
	recipient string
	content   string
	message   *types.Message
	err       error
}

type markReadMsg struct {
	peer string
	err  error
}

type projectCreatedMsg struct {
	project *types.Project
	err     error
}

type projectDeletedMsg struct {
	id  uint64
	err error
}

type workflowAddedMsg struct {
	projectID uint64
	workflow  *types.Workflow
	err       error
}

type taskAddedMsg struct {
	projectID  uint64
	workflowID uint64
	task       *types.Task
	err        error
}

type uiStateLoadedMsg struct {
	state *types.UIState
	err   error
}

type uiStateSavedMsg struct {
	err error
}

type copiedMsg struct {
	err error
}
