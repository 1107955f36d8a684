package domain

import "time"

// EscalationLevel is the severity tier for an escalated ticket. Levels map
// to response-time expectations consumed by the notification collaborator.
type EscalationLevel string

const (
	LevelL1        EscalationLevel = "L1"
	LevelL2        EscalationLevel = "L2"
	LevelL3        EscalationLevel = "L3"
	LevelEmergency EscalationLevel = "EMERGENCY"
)

// ResponseTarget is the expected human response time for the level.
// Emergency means immediate.
func (l EscalationLevel) ResponseTarget() time.Duration {
	switch l {
	case LevelL1:
		return 30 * time.Minute
	case LevelL2:
		return 15 * time.Minute
	case LevelL3:
		return 5 * time.Minute
	default:
		return 0
	}
}

// Support team identifiers used for escalation routing.
const (
	TeamHardware = "Hardware Team"
	TeamSoftware = "Software Team"
	TeamNetwork  = "Network Team"
	TeamAccess   = "Access Management"
	TeamSecurity = "Security Team"
	TeamGeneral  = "General IT Support"
)
