package dto

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

func TestValidPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"admin@123", true},
		{"Abc_def!", true},
		{"short@1", false},
		{"abcdefgh", false},
		{"ABCDEF@123", false},
		{"abcdefgh@1234567", true},
		{"abcdefgh@12345678", false},
		{"abc def@123", false},
		{"abc~def@123", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPassword(tt.password))
		})
	}
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("user@example.com"))
	assert.True(t, ValidEmail("a.b+c@sub.example.co"))
	assert.False(t, ValidEmail("user@example"))
	assert.False(t, ValidEmail("user example@x.com"))
	assert.False(t, ValidEmail("@example.com"))
}

func TestOptionalScore(t *testing.T) {
	tests := []struct {
		body  string
		set   bool
		valid bool
		value int
	}{
		{`{}`, false, false, 0},
		{`{"score": 4}`, true, true, 4},
		{`{"score": 4.0}`, true, true, 4},
		{`{"score": 4.5}`, true, false, 0},
		{`{"score": "4"}`, true, false, 0},
		{`{"score": null}`, true, false, 0},
		{`{"score": 9}`, true, true, 9},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var req SubmitRatingRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.set, req.Score.Set)
			assert.Equal(t, tt.valid, req.Score.Valid)
			assert.Equal(t, tt.value, req.Score.Value)
		})
	}
}

func TestOptionalText(t *testing.T) {
	var req EditRatingRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &req))
	assert.False(t, req.Text.Set)

	req = EditRatingRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"text": null}`), &req))
	assert.True(t, req.Text.Set)
	assert.True(t, req.Text.Valid)
	assert.Nil(t, req.Text.Value)

	req = EditRatingRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"text": "great"}`), &req))
	require.NotNil(t, req.Text.Value)
	assert.Equal(t, "great", *req.Text.Value)

	req = EditRatingRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"text": 12}`), &req))
	assert.True(t, req.Text.Set)
	assert.False(t, req.Text.Valid)
}

// firstFieldError 用 gin 的校验引擎校验并取第一个字段错误
func firstFieldError(t *testing.T, obj interface{}) validator.FieldError {
	err := binding.Validator.ValidateStruct(obj)
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs), "got %T", err)
	return verrs[0]
}

func TestDefaultFieldMessage(t *testing.T) {
	tests := []struct {
		name string
		obj  interface{}
		want string
	}{
		{"缺少字段", &RegisterRequest{Email: "a@b.co", Password: "abc@1234"}, "name is required"},
		{"过短", &RegisterRequest{Name: "A", Email: "a@b.co", Password: "abc@1234"}, "name must be at least 2 characters"},
		{"过长", &RegisterRequest{Name: "Someone", Email: "a@b.co", Password: "abc@1234", Address: strings.Repeat("x", 401)}, "address cannot exceed 400 characters"},
		{"邮箱格式", &RegisterRequest{Name: "Someone", Email: "a@b", Password: "abc@1234"}, "Invalid email format"},
		{"密码规则", &RegisterRequest{Name: "Someone", Email: "a@b.co", Password: "abcd1234"}, PasswordRuleMessage},
		{"确认密码", &ChangePasswordRequest{OldPassword: "x", NewPassword: "abc@1234", ConfirmPassword: "abc@1235"}, "confirmPassword must match NewPassword"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultFieldMessage(firstFieldError(t, tt.obj)))
		})
	}
}

func TestFieldMessenger(t *testing.T) {
	var m FieldMessenger = &AdminCreateStoreRequest{}
	assert.Equal(t, "Name, address, and owner_id are required", m.FieldMessage("owner_id", "required"))
	assert.Equal(t, "Store name must be between 2 and 100 characters", m.FieldMessage("name", "min"))

	m = &CreateUserRequest{}
	assert.Equal(t, "Invalid role", m.FieldMessage("role", "oneof"))
	assert.Empty(t, m.FieldMessage("email", "email_format"), "未覆盖的规则走默认文案")

	m = &ChangePasswordRequest{}
	assert.Equal(t, "New password and confirmation do not match", m.FieldMessage("confirmPassword", "eqfield"))
}
