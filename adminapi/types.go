package adminapi

// UserProfile is the signed-in user as the backend sees them.
type UserProfile struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
	Roles     []string `json:"roles"`
	IsAdmin   bool     `json:"is_admin"`
	IsUser    bool     `json:"is_user"`
	IsGuest   bool     `json:"is_guest"`
	Enabled   bool     `json:"enabled"`
	CreatedAt string   `json:"created_at,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

type UserRoles struct {
	Roles   []string `json:"roles"`
	IsAdmin bool     `json:"isAdmin"`
	IsUser  bool     `json:"isUser"`
	IsGuest bool     `json:"isGuest"`
}

// User is a managed account as returned by the admin endpoints.
type User struct {
	ID               string              `json:"id"`
	Username         string              `json:"username"`
	Email            string              `json:"email"`
	FirstName        string              `json:"firstName,omitempty"`
	LastName         string              `json:"lastName,omitempty"`
	Enabled          bool                `json:"enabled"`
	EmailVerified    bool                `json:"emailVerified"`
	CreatedTimestamp int64               `json:"createdTimestamp"`
	Attributes       map[string][]string `json:"attributes,omitempty"`
}

type CreateUserRequest struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Password  string   `json:"password"`
	Roles     []string `json:"roles"`
}

// UpdateUserRequest only sends the fields that are set.
type UpdateUserRequest struct {
	Email     *string  `json:"email,omitempty"`
	FirstName *string  `json:"first_name,omitempty"`
	LastName  *string  `json:"last_name,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	Enabled   *bool    `json:"enabled,omitempty"`
}

type MutationResult struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Composite   bool   `json:"composite"`
	ClientRole  bool   `json:"clientRole"`
	ContainerID string `json:"containerId"`
}

// UserSession is a backend login session. Start and LastAccess are unix
// milliseconds.
type UserSession struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	Username   string            `json:"username"`
	IPAddress  string            `json:"ipAddress"`
	Start      int64             `json:"start"`
	LastAccess int64             `json:"lastAccess"`
	Clients    map[string]string `json:"clients,omitempty"`
	UserAgent  string            `json:"userAgent,omitempty"`
	Browser    string            `json:"browser,omitempty"`
	OS         string            `json:"os,omitempty"`
}

type SessionRevocationResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	SessionsRevoked int    `json:"sessionsRevoked,omitempty"`
}

type UserDetails struct {
	User     *User         `json:"user"`
	Roles    []Role        `json:"roles"`
	Sessions []UserSession `json:"sessions"`
}

type TokenValidation struct {
	Valid bool         `json:"valid"`
	User  *UserProfile `json:"user,omitempty"`
}

// APIResponse is the envelope used by the statistics endpoint.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type StatItem struct {
	Value         float64 `json:"value"`
	ChangePercent float64 `json:"change_percent"`
	ChangePeriod  string  `json:"change_period"`
}

type ServiceStatus struct {
	Name             string  `json:"name"`
	Status           string  `json:"status"`
	UptimePercentage float64 `json:"uptime_percentage"`
}

// Service status values.
const (
	StatusOperational = "operational"
	StatusDegraded    = "degraded"
	StatusOutage      = "outage"
)

type SystemStatus struct {
	Percentage float64         `json:"percentage"`
	Status     string          `json:"status"`
	Details    []ServiceStatus `json:"details"`
}

type StatisticsResponse struct {
	TotalUsers     StatItem     `json:"total_users"`
	ActiveSessions StatItem     `json:"active_sessions"`
	SystemStatus   SystemStatus `json:"system_status"`
}
