package lockapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// EnrollFingerprint starts enrollment on the sensor. The call returns once the
// backend accepts the request; progress arrives over the push channel.
func (c *Client) EnrollFingerprint(ctx context.Context, req EnrollRequest) (Fingerprint, error) {
	if strings.TrimSpace(req.UserName) == "" {
		return Fingerprint{}, fmt.Errorf("user name required")
	}
	var payload Fingerprint
	if err := c.do(ctx, http.MethodPost, "/api/fingerprint/enroll", req, &payload); err != nil {
		return Fingerprint{}, err
	}
	return payload, nil
}

// VerifyFingerprint checks a sensor slot against the enrolled prints.
func (c *Client) VerifyFingerprint(ctx context.Context, fingerprintID int) (VerifyResult, error) {
	body := map[string]int{"fingerprint_id": fingerprintID}
	var payload VerifyResult
	if err := c.do(ctx, http.MethodPost, "/api/fingerprint/verify", body, &payload); err != nil {
		return VerifyResult{}, err
	}
	return payload, nil
}

// ListFingerprints returns enrolled fingerprints.
func (c *Client) ListFingerprints(ctx context.Context) ([]Fingerprint, error) {
	var payload []Fingerprint
	if err := c.do(ctx, http.MethodGet, "/api/fingerprint/prints", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// SensorFingerprints lists the slots stored on the sensor itself.
func (c *Client) SensorFingerprints(ctx context.Context) (SensorPrints, error) {
	var payload SensorPrints
	if err := c.do(ctx, http.MethodGet, "/api/fingerprint/sensor-prints", nil, &payload); err != nil {
		return SensorPrints{}, err
	}
	return payload, nil
}

// DeleteFingerprint removes one enrolled fingerprint.
func (c *Client) DeleteFingerprint(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/fingerprint/"+strconv.FormatInt(id, 10), nil, nil)
}

// ClearFingerprints wipes the database and the sensor.
func (c *Client) ClearFingerprints(ctx context.Context) (Result, error) {
	var payload Result
	if err := c.do(ctx, http.MethodDelete, "/api/fingerprint/clear-all", nil, &payload); err != nil {
		return Result{}, err
	}
	return payload, nil
}

// RegisterCard binds an RFID card to a user.
func (c *Client) RegisterCard(ctx context.Context, cardUID, userName string) (RFIDCard, error) {
	if strings.TrimSpace(cardUID) == "" {
		return RFIDCard{}, fmt.Errorf("card uid required")
	}
	body := map[string]string{"card_uid": cardUID, "user_name": userName}
	var payload RFIDCard
	if err := c.do(ctx, http.MethodPost, "/api/rfid/register", body, &payload); err != nil {
		return RFIDCard{}, err
	}
	return payload, nil
}

// VerifyCard checks an RFID card UID.
func (c *Client) VerifyCard(ctx context.Context, cardUID string) (VerifyResult, error) {
	body := map[string]string{"card_uid": cardUID}
	var payload VerifyResult
	if err := c.do(ctx, http.MethodPost, "/api/rfid/verify", body, &payload); err != nil {
		return VerifyResult{}, err
	}
	return payload, nil
}

// ListCards returns registered RFID cards.
func (c *Client) ListCards(ctx context.Context) ([]RFIDCard, error) {
	var payload []RFIDCard
	if err := c.do(ctx, http.MethodGet, "/api/rfid/cards", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// DeleteCard removes a registered card.
func (c *Client) DeleteCard(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/rfid/"+strconv.FormatInt(id, 10), nil, nil)
}

// SetKeypadPassword sets or changes the keypad password.
func (c *Client) SetKeypadPassword(ctx context.Context, password string) (Result, error) {
	body := map[string]string{"password": password}
	var payload Result
	if err := c.do(ctx, http.MethodPost, "/api/keypad/set-password", body, &payload); err != nil {
		return Result{}, err
	}
	return payload, nil
}

// VerifyKeypad checks a keypad password.
func (c *Client) VerifyKeypad(ctx context.Context, password string) (VerifyResult, error) {
	body := map[string]string{"password": password}
	var payload VerifyResult
	if err := c.do(ctx, http.MethodPost, "/api/keypad/verify", body, &payload); err != nil {
		return VerifyResult{}, err
	}
	return payload, nil
}

// HasKeypadPassword reports whether a keypad password is configured.
func (c *Client) HasKeypadPassword(ctx context.Context) (bool, error) {
	var payload struct {
		HasPassword bool `json:"has_password"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/keypad/has-password", nil, &payload); err != nil {
		return false, err
	}
	return payload.HasPassword, nil
}

// VerifyFaceFromStream asks the backend to match the current camera frame.
func (c *Client) VerifyFaceFromStream(ctx context.Context) (VerifyResult, error) {
	var payload VerifyResult
	if err := c.do(ctx, http.MethodPost, "/api/face/verify-from-stream", nil, &payload); err != nil {
		return VerifyResult{}, err
	}
	return payload, nil
}

// ListFaceUsers returns users with registered faces.
func (c *Client) ListFaceUsers(ctx context.Context) ([]FaceUser, error) {
	var payload []FaceUser
	if err := c.do(ctx, http.MethodGet, "/api/face/users", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// DeleteFace removes a user's registered face.
func (c *Client) DeleteFace(ctx context.Context, userID int64) error {
	return c.do(ctx, http.MethodDelete, "/api/face/"+strconv.FormatInt(userID, 10), nil, nil)
}

// ListUsers returns every user with credential counts.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var payload []User
	if err := c.do(ctx, http.MethodGet, "/api/users/all", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// DeleteUser removes a user and their credentials.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+strconv.FormatInt(id, 10), nil, nil)
}
