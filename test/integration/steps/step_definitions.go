package steps

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expense-tracker/backend/internal/domain/entity"
	"github.com/expense-tracker/backend/internal/integration/persistence/model"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func (t *testContext) theAPIServerIsRunning() error {
	return startServer(getSuite())
}

func (t *testContext) todayIs(date string) error {
	day, err := entity.ParseCalendarDate(date)
	if err != nil {
		return err
	}
	getSuite().timeMock.SetCurrentTime(day.Add(12 * time.Hour))
	return nil
}

func (t *testContext) aUserExistsWithEmailAndPassword(email, password string) error {
	payload, _ := json.Marshal(map[string]string{
		"email":    email,
		"name":     "Test User",
		"password": password,
	})
	if err := t.executeRequest(http.MethodPost, "/api/v1/auth/register", payload); err != nil {
		return err
	}
	if t.response.status != http.StatusCreated {
		return fmt.Errorf("failed to register %s: %d %v", email, t.response.status, t.response.body)
	}
	return nil
}

func (t *testContext) iAmLoggedInAs(email, password string) error {
	payload, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err := t.executeRequest(http.MethodPost, "/api/v1/auth/login", payload); err != nil {
		return err
	}
	if t.response.status != http.StatusOK {
		return fmt.Errorf("failed to log in as %s: %d %v", email, t.response.status, t.response.body)
	}

	token, ok := getFieldValue(t.response.body, "access_token").(string)
	if !ok || token == "" {
		return fmt.Errorf("login response has no access token: %v", t.response.body)
	}
	t.accessToken = token
	return nil
}

func (t *testContext) theUserHasDisabledBudgetAlerts(email string) error {
	return getSuite().db.DbConn.Model(&model.UserModel{}).
		Where("email = ?", email).
		Update("budget_alerts", false).Error
}

func (t *testContext) theFollowingExpensesExist(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return errors.New("expense table needs a header and at least one row")
	}

	header := table.Rows[0].Cells
	for _, row := range table.Rows[1:] {
		expense := map[string]any{}
		for i, cell := range row.Cells {
			name := header[i].Value
			if name == "amount" {
				amount, err := strconv.ParseFloat(cell.Value, 64)
				if err != nil {
					return fmt.Errorf("invalid amount %q: %w", cell.Value, err)
				}
				expense[name] = amount
				continue
			}
			expense[name] = cell.Value
		}

		payload, _ := json.Marshal(expense)
		if err := t.executeRequest(http.MethodPost, "/api/v1/expenses", payload); err != nil {
			return err
		}
		if t.response.status != http.StatusCreated {
			return fmt.Errorf("failed to create expense %v: %d %v", expense, t.response.status, t.response.body)
		}
	}
	return nil
}

func (t *testContext) theAIModelAnswersWith(operation string, answer *godog.DocString) error {
	getSuite().gateway.Answer(operation, answer.Content)
	return nil
}

func (t *testContext) theAIModelIsUnavailable() error {
	getSuite().gateway.Reset()
	return nil
}

func (t *testContext) theHeaderIsEmpty() error {
	t.headers = make(map[string]string)
	return nil
}

func (t *testContext) theHeaderContainsTheKeyWith(key, value string) error {
	t.headers[key] = value
	return nil
}

func (t *testContext) iSendARequestTo(method, path string) error {
	path = t.replacePlaceholders(path)
	return t.executeRequest(method, path, nil)
}

func (t *testContext) iSendARequestToWithBody(method, path string, body *godog.DocString) error {
	path = t.replacePlaceholders(path)

	var payload []byte
	if body != nil && body.Content != "" {
		payload = []byte(t.replacePlaceholders(body.Content))
	}
	return t.executeRequest(method, path, payload)
}

func (t *testContext) iUploadAFileTo(kind, path string) error {
	var content []byte
	switch kind {
	case "png":
		content = pngHeader
	case "text":
		content = []byte("this is not an image")
	default:
		return fmt.Errorf("unknown file kind %q", kind)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "receipt."+kind)
	if err != nil {
		return err
	}
	if _, err := part.Write(content); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, t.uri+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return t.do(req)
}

func (t *testContext) replacePlaceholders(content string) string {
	content = strings.ReplaceAll(content, "{{access_token}}", t.accessToken)
	content = strings.ReplaceAll(content, "{{expense_id}}", t.expenseID.String())
	content = strings.ReplaceAll(content, "{{budget_id}}", t.budgetID.String())
	return content
}

func (t *testContext) executeRequest(method, path string, payload []byte) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, t.uri+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return t.do(req)
}

func (t *testContext) do(req *http.Request) error {
	if t.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.accessToken)
	}
	for key, value := range t.headers {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	t.response = &response{status: resp.StatusCode}

	var decoded any
	if err := json.Unmarshal(bodyBytes, &decoded); err != nil {
		t.response.body = string(bodyBytes)
		return nil
	}
	t.response.body = decoded

	// Remember created resources for later {{expense_id}} and {{budget_id}} placeholders.
	if obj, ok := decoded.(map[string]any); ok && req.Method == http.MethodPost {
		if id, err := uuid.Parse(fmt.Sprint(obj["id"])); err == nil {
			switch {
			case strings.HasPrefix(req.URL.Path, "/api/v1/expenses"):
				t.expenseID = id
			case strings.HasPrefix(req.URL.Path, "/api/v1/budgets"):
				t.budgetID = id
			}
		}
		if expense, ok := obj["expense"].(map[string]any); ok {
			if id, err := uuid.Parse(fmt.Sprint(expense["id"])); err == nil {
				t.expenseID = id
			}
		}
	}

	return nil
}

func (t *testContext) theResponseStatusShouldBe(expectedStatus int) error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if t.response.status != expectedStatus {
		return fmt.Errorf("expected status %d, got %d (body: %v)", expectedStatus, t.response.status, t.response.body)
	}
	return nil
}

func (t *testContext) theResponseShouldBeJSON() error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if _, ok := t.response.body.(string); ok {
		return fmt.Errorf("response is not JSON: %v", t.response.body)
	}
	return nil
}

func (t *testContext) theResponseShouldContain(field string) error {
	if t.response == nil {
		return errors.New("no response received")
	}

	body, ok := t.response.body.(map[string]any)
	if !ok {
		return fmt.Errorf("response is not a JSON object: %v", t.response.body)
	}

	if _, exists := body[field]; !exists {
		return fmt.Errorf("response does not contain field '%s': %v", field, body)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldBe(field, expectedValue string) error {
	if t.response == nil {
		return errors.New("no response received")
	}

	value := getFieldValue(t.response.body, field)
	if value == nil {
		return fmt.Errorf("field '%s' not found in response: %v", field, t.response.body)
	}

	actualValue := fmt.Sprintf("%v", value)
	if actualValue != expectedValue {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expectedValue, actualValue)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldExist(field string) error {
	if t.response == nil {
		return errors.New("no response received")
	}

	if getFieldValue(t.response.body, field) == nil {
		return fmt.Errorf("field '%s' not found in response: %v", field, t.response.body)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldBeNull(field string) error {
	if t.response == nil {
		return errors.New("no response received")
	}

	body, ok := t.response.body.(map[string]any)
	if !ok {
		return fmt.Errorf("response is not a JSON object: %v", t.response.body)
	}
	value, exists := body[field]
	if !exists {
		return fmt.Errorf("response does not contain field '%s': %v", field, body)
	}
	if value != nil {
		return fmt.Errorf("field '%s' expected null, got %v", field, value)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldHaveItems(field string, count int) error {
	if t.response == nil {
		return errors.New("no response received")
	}

	value := t.response.body
	if field != "." {
		value = getFieldValue(t.response.body, field)
	}
	items, ok := value.([]any)
	if !ok {
		return fmt.Errorf("field '%s' is not a list: %v", field, value)
	}
	if len(items) != count {
		return fmt.Errorf("field '%s' expected %d items, got %d", field, count, len(items))
	}
	return nil
}

func (t *testContext) theDbShouldContainObjectsInTheTable(quantity int, table string) error {
	db := getSuite().db
	if tableModel, ok := db.GetModel(table); ok {
		var count int64
		if err := db.DbConn.Unscoped().Model(tableModel).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(quantity) {
			return fmt.Errorf("expected %d objects in '%s', got %d", quantity, table, count)
		}
		return nil
	}
	return fmt.Errorf("table '%s' not found in models", table)
}

func (t *testContext) theDbShouldContainObjectsInWithTheValues(quantity int, table string, content *godog.DocString) error {
	var criteria map[string]any
	if err := json.Unmarshal([]byte(content.Content), &criteria); err != nil {
		return err
	}

	db := getSuite().db
	if tableModel, ok := db.GetModel(table); ok {
		entityType := reflect.TypeOf(tableModel).Elem()
		entitySlicePtr := reflect.New(reflect.SliceOf(entityType))

		query := db.DbConn.Unscoped()
		for key, value := range criteria {
			query = query.Where(fmt.Sprintf("%s = ?", key), value)
		}

		result := query.Find(entitySlicePtr.Interface())
		if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		count := entitySlicePtr.Elem().Len()
		if count != quantity {
			return fmt.Errorf("expected %d objects in '%s' with criteria %v, got %d", quantity, table, criteria, count)
		}
		return nil
	}
	return fmt.Errorf("table '%s' not found in models", table)
}

// theEmailAPIShouldReceiveEmails waits for the background worker to deliver the queued emails.
func (t *testContext) theEmailAPIShouldReceiveEmails(count int) error {
	emailAPI := getSuite().emailAPI

	var received int
	for i := 0; i < 30; i++ {
		received = len(emailAPI.Requests(http.MethodPost, "/emails"))
		if received >= count {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	// Give late duplicates a chance to show up before asserting the exact count.
	time.Sleep(300 * time.Millisecond)
	received = len(emailAPI.Requests(http.MethodPost, "/emails"))
	if received != count {
		return fmt.Errorf("expected %d emails, got %d", count, received)
	}
	return nil
}

func (t *testContext) theLastEmailSubjectShouldBe(subject string) error {
	requests := getSuite().emailAPI.Requests(http.MethodPost, "/emails")
	if len(requests) == 0 {
		return errors.New("no email was sent")
	}

	actual := fmt.Sprint(requests[len(requests)-1].Body["subject"])
	if actual != subject {
		return fmt.Errorf("expected subject %q, got %q", subject, actual)
	}
	return nil
}

func getFieldValue(object any, dotSeparatedField string) any {
	var field any = object

	for _, currentField := range strings.Split(dotSeparatedField, ".") {
		if field == nil {
			return nil
		}

		if i, err := strconv.Atoi(currentField); err == nil {
			if arr, ok := field.([]any); ok && i < len(arr) {
				field = arr[i]
			} else {
				return nil
			}
		} else {
			if m, ok := field.(map[string]any); ok {
				field = m[currentField]
			} else {
				return nil
			}
		}
	}

	return field
}
