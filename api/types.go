package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Service role codes.
const (
	RoleCodeViewer = 0
	RoleCodeScorer = 1
)

// Credentials is the account/password pair sent to signup and login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FlexString decodes a JSON string or number into text. The service is not
// consistent about quoting ids and numeric profile fields.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string { return string(s) }

// RoleCode is the service's coded role. It accepts 0, 1, "0" and "1"; any
// other value, including an absent field, is recorded as unrecognized.
type RoleCode struct {
	value int
	known bool
	raw   string
}

// NewRoleCode returns a recognized code.
func NewRoleCode(v int) RoleCode {
	return RoleCode{value: v, known: true, raw: strconv.Itoa(v)}
}

// Code returns the numeric role and whether it was recognized.
func (r RoleCode) Code() (int, bool) {
	return r.value, r.known
}

// Raw returns the value as sent, for logging.
func (r RoleCode) Raw() string {
	return r.raw
}

func (r *RoleCode) UnmarshalJSON(data []byte) error {
	*r = RoleCode{raw: string(bytes.TrimSpace(data))}
	if r.raw == "" || r.raw == "null" {
		return nil
	}

	text := r.raw
	if text[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		text = strings.TrimSpace(s)
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return nil
	}
	if v == RoleCodeViewer || v == RoleCodeScorer {
		r.value = v
		r.known = true
	}
	return nil
}

func (r RoleCode) MarshalJSON() ([]byte, error) {
	if !r.known {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(r.value)), nil
}

// LoginResponse is the success payload of POST /users/login.
type LoginResponse struct {
	ID           FlexString `json:"id"`
	Token        string     `json:"token"`
	SocketToken  string     `json:"socketToken"`
	Role         RoleCode   `json:"role"`
	Name         string     `json:"name,omitempty"`
	ProfilePic   string     `json:"profilePic,omitempty"`
	Status       FlexString `json:"status,omitempty"`
	MobileNumber FlexString `json:"mobileNumber,omitempty"`
	CountryCode  FlexString `json:"countryCode,omitempty"`
	Address      string     `json:"address,omitempty"`
}

// SignupResult reports the status of POST /users/signup.
type SignupResult struct {
	StatusCode int
}

// Created reports whether the service created the account (HTTP 201).
func (r *SignupResult) Created() bool {
	return r != nil && r.StatusCode == 201
}

// EditProfileRequest carries the profile fields to change. Nil fields are
// omitted from the request body.
type EditProfileRequest struct {
	Name        *string `json:"name,omitempty"`
	ProfilePic  *string `json:"profilePic,omitempty"`
	Status      *string `json:"status,omitempty"`
	FCMToken    *string `json:"fcmToken,omitempty"`
	CountryCode *string `json:"countryCode,omitempty"`
	Address     *string `json:"address,omitempty"`
}

// Empty reports whether no field is set.
func (r EditProfileRequest) Empty() bool {
	return r.Name == nil && r.ProfilePic == nil && r.Status == nil &&
		r.FCMToken == nil && r.CountryCode == nil && r.Address == nil
}

// EditProfileResponse is the echo returned by POST /users/editProfile.
type EditProfileResponse struct {
	StatusCode int
	Body       json.RawMessage
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Msg     string `json:"msg"`
}

func (b errorBody) text() string {
	switch {
	case b.Message != "":
		return b.Message
	case b.Error != "":
		return b.Error
	default:
		return b.Msg
	}
}
