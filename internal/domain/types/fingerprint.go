package types

import "strings"

// Fingerprint is the set of hardware and OS attributes sent to the backend
// when a device bootstraps its identity.
type Fingerprint struct {
	Brand      string `json:"brand"`
	Model      string `json:"model"`
	HardwareID string `json:"hardware_id"`
	OSName     string `json:"os_name"`
	OSVersion  string `json:"os_version"`
	BuildID    string `json:"build_id"`
	MACID      string `json:"mac_id"`
}

// OS joins name, version and build into the single string the backend expects.
func (f Fingerprint) OS() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{f.OSName, f.OSVersion} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	s := strings.Join(parts, " ")
	if f.BuildID != "" {
		s += " (" + f.BuildID + ")"
	}
	return strings.TrimSpace(s)
}
