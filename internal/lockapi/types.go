package lockapi

import "time"

const backendTimestampLayout = "2006-01-02T15:04:05.999999"

// Mode is the lock's operating mode.
type Mode string

const (
	ModeEntryExit    Mode = "entry_exit"
	ModeRegistration Mode = "registration"
)

// Valid reports whether m is a mode the backend accepts.
func (m Mode) Valid() bool {
	return m == ModeEntryExit || m == ModeRegistration
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeRegistration {
		return ModeEntryExit
	}
	return ModeRegistration
}

// DoorStatus is the believed or confirmed state of the door.
type DoorStatus string

const (
	DoorLocked   DoorStatus = "locked"
	DoorUnlocked DoorStatus = "unlocked"
)

// Valid reports whether s is a door status the backend accepts.
func (s DoorStatus) Valid() bool {
	return s == DoorLocked || s == DoorUnlocked
}

// SystemState mirrors GET /api/state.
type SystemState struct {
	Mode       Mode       `json:"mode"`
	DoorStatus DoorStatus `json:"door_status"`
}

// DetailedStatus mirrors GET /api/state/status.
type DetailedStatus struct {
	Mode               Mode       `json:"mode"`
	DoorStatus         DoorStatus `json:"door_status"`
	IsEntryExitMode    bool       `json:"is_entry_exit_mode"`
	IsRegistrationMode bool       `json:"is_registration_mode"`
}

// Health mirrors GET /health.
type Health struct {
	Status        string     `json:"status"`
	UARTConnected bool       `json:"uart_connected"`
	Mode          Mode       `json:"mode"`
	DoorStatus    DoorStatus `json:"door_status"`
}

// Result is the generic {success, message} acknowledgement.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RuntimeConfig mirrors GET /api/config.
type RuntimeConfig struct {
	UARTPort                string  `json:"uart_port"`
	UARTBaudrate            int     `json:"uart_baudrate"`
	FaceSimilarityThreshold float64 `json:"face_similarity_threshold"`
	APIHost                 string  `json:"api_host,omitempty"`
	APIPort                 int     `json:"api_port,omitempty"`
	DatabaseURL             string  `json:"database_url,omitempty"`
}

// ConfigUpdate is a partial configuration. Nil fields are left unchanged.
type ConfigUpdate struct {
	UARTPort                *string  `json:"uart_port,omitempty"`
	UARTBaudrate            *int     `json:"uart_baudrate,omitempty"`
	FaceSimilarityThreshold *float64 `json:"face_similarity_threshold,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ConfigUpdate) Empty() bool {
	return u.UARTPort == nil && u.UARTBaudrate == nil && u.FaceSimilarityThreshold == nil
}

// ConfigUpdateResponse mirrors POST /api/config/update.
type ConfigUpdateResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Config  RuntimeConfig `json:"config"`
}

// AccessLog is a single access attempt.
type AccessLog struct {
	ID           int64  `json:"id"`
	UserID       *int64 `json:"user_id,omitempty"`
	UserName     string `json:"user_name,omitempty"`
	AccessMethod string `json:"access_method"`
	AccessType   string `json:"access_type"`
	Success      bool   `json:"success"`
	Timestamp    string `json:"timestamp"`
	Details      string `json:"details,omitempty"`
}

// ParsedTime returns the timestamp as time.Time when possible.
func (l AccessLog) ParsedTime() time.Time {
	return parseTime(l.Timestamp)
}

// AccessStats mirrors GET /api/logs/stats.
type AccessStats struct {
	TotalAccesses      int            `json:"total_accesses"`
	SuccessfulAccesses int            `json:"successful_accesses"`
	FailedAccesses     int            `json:"failed_accesses"`
	ByMethod           map[string]int `json:"by_method"`
	ByType             map[string]int `json:"by_type"`
	RecentLogs         []AccessLog    `json:"recent_logs"`
}

// Clone returns a deep copy.
func (s *AccessStats) Clone() *AccessStats {
	if s == nil {
		return nil
	}
	dup := *s
	dup.ByMethod = cloneCounts(s.ByMethod)
	dup.ByType = cloneCounts(s.ByType)
	if len(s.RecentLogs) > 0 {
		dup.RecentLogs = make([]AccessLog, len(s.RecentLogs))
		copy(dup.RecentLogs, s.RecentLogs)
	}
	return &dup
}

// SuccessRate returns the fraction of successful accesses in [0,1].
func (s *AccessStats) SuccessRate() float64 {
	if s == nil || s.TotalAccesses <= 0 {
		return 0
	}
	return float64(s.SuccessfulAccesses) / float64(s.TotalAccesses)
}

// LogQuery filters GET /api/logs.
type LogQuery struct {
	Limit      int
	Offset     int
	Method     string
	AccessType string
	Success    *bool
}

// LogPage mirrors GET /api/logs.
type LogPage struct {
	Logs  []AccessLog `json:"logs"`
	Total int         `json:"total"`
}

// User mirrors GET /api/users/all.
type User struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	CreatedAt         string `json:"created_at"`
	FingerprintsCount int    `json:"fingerprints_count"`
	FacesCount        int    `json:"faces_count"`
}

// Fingerprint is an enrolled fingerprint.
type Fingerprint struct {
	ID            int64  `json:"id"`
	FingerprintID int    `json:"fingerprint_id"`
	UserID        int64  `json:"user_id"`
	UserName      string `json:"user_name"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
}

// EnrollRequest starts a fingerprint enrollment. Progress arrives as push events.
type EnrollRequest struct {
	FingerprintID  int    `json:"fingerprint_id"`
	UserName       string `json:"user_name"`
	FingerPosition int    `json:"finger_position"`
}

// SensorPrints mirrors GET /api/fingerprint/sensor-prints.
type SensorPrints struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Fingerprints []int  `json:"fingerprints,omitempty"`
	Count        int    `json:"count,omitempty"`
}

// RFIDCard is a registered card.
type RFIDCard struct {
	ID        int64  `json:"id"`
	CardUID   string `json:"card_uid"`
	UserName  string `json:"user_name"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// VerifyResult is returned by the face, fingerprint, RFID and keypad verify endpoints.
type VerifyResult struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	UserName   string  `json:"user_name,omitempty"`
	CardUID    string  `json:"card_uid,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
}

// FaceUser mirrors GET /api/face/users.
type FaceUser struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	HasFace   bool   `json:"has_face"`
}

func cloneCounts(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(backendTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
