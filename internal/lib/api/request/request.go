package request

type Register struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Location string `json:"location,omitempty"`
	Picture  string `json:"picture,omitempty"`
	DOB      string `json:"dob,omitempty"`
}

type Login struct {
	Credential string `json:"credential"`
	Password   string `json:"password"`
}

type UpdateProfile struct {
	Name            string `json:"name,omitempty"`
	Location        string `json:"location,omitempty"`
	Picture         string `json:"picture,omitempty"`
	DOB             string `json:"dob,omitempty"`
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword,omitempty"`
}
