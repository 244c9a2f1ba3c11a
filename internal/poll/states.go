package poll

// Status vocabularies for the two operation kinds this tool waits on. The
// empty string counts as pending: the service can briefly report no status
// while the resource materializes.

var moduleStates = map[string]State{
	"":                            StatePending,
	"Creating":                    StatePending,
	"StartingImportModuleRunbook": StatePending,
	"RunningImportModuleRunbook":  StatePending,
	"ContentRetrieved":            StatePending,
	"ContentDownloaded":           StatePending,
	"ContentValidated":            StatePending,
	"ConnectionTypeImported":      StatePending,
	"ContentStored":               StatePending,
	"ModuleDataStored":            StatePending,
	"ActivitiesStored":            StatePending,
	"ModuleImportRunbookComplete": StatePending,
	"Updating":                    StatePending,
	"Created":                     StateSucceeded,
	"Succeeded":                   StateSucceeded,
	"Failed":                      StateFailed,
	"Cancelled":                   StateFailed,
}

var jobStates = map[string]State{
	"":           StatePending,
	"New":        StatePending,
	"Activating": StatePending,
	"Queued":     StatePending,
	"Starting":   StatePending,
	"Resuming":   StatePending,
	"Running":    StatePending,
	"Stopping":   StatePending,
	"Suspending": StatePending,
	"Completed":  StateSucceeded,
	"Failed":     StateFailed,
	"Stopped":    StateFailed,
	"Suspended":  StateFailed,
}

// ModuleStates classifies automation module provisioning states.
func ModuleStates(status string) State {
	if s, ok := moduleStates[status]; ok {
		return s
	}
	return StateUnrecognized
}

// JobStates classifies DSC compilation job statuses.
func JobStates(status string) State {
	if s, ok := jobStates[status]; ok {
		return s
	}
	return StateUnrecognized
}
