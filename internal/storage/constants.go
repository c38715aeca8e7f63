package db

// Settings keys.
const (
	// SettingEssentialSenders stores the operator-managed sender allowlist.
	SettingEssentialSenders = "essential_senders"
)

// Default query limits.
const (
	defaultRecordLimit = 50
	defaultSearchLimit = 5
)

// Advisory lock IDs. Digest runs serialize on this lock so overlapping
// triggers (scheduler plus manual run) cannot interleave.
const DigestRunLockID = 2000
