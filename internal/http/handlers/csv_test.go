package handlers

import (
	"bytes"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/fire-triage/backend/internal/models"
)

const ticketsHeader = "GUID клиента,Пол клиента,Дата рождения,Описание,Вложения,Сегмент клиента,Страна,Область,Населённый пункт,Улица,Дом"

func TestParseTicketsCSV(t *testing.T) {
	guid := uuid.New()
	content := ticketsHeader + "\n" +
		guid.String() + ",Мужской,1990-04-12,Не приходит выписка,nan,VIP,Казахстан,Алматинская область,Алматы,Абая,10\n"
	fh := makeMultipartFile(t, "file", "tickets.csv", content)

	tickets, errs := parseTicketsCSV(fh)
	if len(errs) > 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if len(tickets) != 1 {
		t.Fatalf("expected 1 ticket, got %d", len(tickets))
	}

	tk := tickets[0]
	if tk.GUID != guid {
		t.Fatalf("unexpected GUID: %s", tk.GUID)
	}
	if tk.Status != models.StatusNew {
		t.Fatalf("expected NEW status, got %s", tk.Status)
	}
	if tk.Attachment != "" {
		t.Fatalf("expected nan cell to be cleaned, got %q", tk.Attachment)
	}
	if tk.Segment != "VIP" || tk.City != "Алматы" || tk.House != "10" {
		t.Fatalf("unexpected fields: %+v", tk)
	}
}

func TestParseTicketsCSVInvalidGUID(t *testing.T) {
	content := ticketsHeader + "\n" +
		"not-a-guid,,,Описание,,Mass,Казахстан,,,Алматы,\n" +
		uuid.NewString() + ",,,Описание,,Mass,Казахстан,,Алматы,Абая,5\n"
	fh := makeMultipartFile(t, "file", "tickets.csv", content)

	tickets, errs := parseTicketsCSV(fh)
	if len(tickets) != 1 {
		t.Fatalf("expected the valid row to survive, got %d tickets", len(tickets))
	}
	if len(errs) != 1 || !strings.Contains(errs[0], "line 2") {
		t.Fatalf("expected one line-numbered error, got %v", errs)
	}
}

func TestParseTicketsCSVMissingGUIDColumn(t *testing.T) {
	content := "Описание,Страна\nтекст,Казахстан\n"
	fh := makeMultipartFile(t, "file", "tickets.csv", content)

	tickets, errs := parseTicketsCSV(fh)
	if tickets != nil {
		t.Fatalf("expected no tickets, got %v", tickets)
	}
	if len(errs) != 1 {
		t.Fatalf("expected a missing-column error, got %v", errs)
	}
}

func TestParseManagersCSV(t *testing.T) {
	almatyID := uuid.New()
	offices := map[string]uuid.UUID{"алматы": almatyID}

	content := "name,position,office,skills\n" +
		"Айгерим Сатпаева,Главный специалист,Алматы,VIP;KZ\n" +
		"Болат Ахметов,Специалист,Алматы,\n"
	fh := makeMultipartFile(t, "file", "managers.csv", content)

	managers, errs := parseManagersCSV(fh, offices)
	if len(errs) > 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if len(managers) != 2 {
		t.Fatalf("expected 2 managers, got %d", len(managers))
	}
	if managers[0].OfficeID != almatyID {
		t.Fatalf("unexpected office id: %s", managers[0].OfficeID)
	}
	if len(managers[0].Skills) != 2 || managers[0].Skills[0] != "VIP" || managers[0].Skills[1] != "KZ" {
		t.Fatalf("unexpected skills: %v", managers[0].Skills)
	}
	if len(managers[1].Skills) != 0 {
		t.Fatalf("expected empty skills, got %v", managers[1].Skills)
	}
}

func TestParseManagersCSVUnknownOffice(t *testing.T) {
	content := "name,position,office,skills\n" +
		"Айгерим Сатпаева,Специалист,Атлантида,RU\n"
	fh := makeMultipartFile(t, "file", "managers.csv", content)

	managers, errs := parseManagersCSV(fh, map[string]uuid.UUID{})
	if len(managers) != 0 {
		t.Fatalf("expected no managers, got %d", len(managers))
	}
	if len(errs) != 1 || !strings.Contains(errs[0], "Атлантида") {
		t.Fatalf("expected unknown office error, got %v", errs)
	}
}

func makeMultipartFile(t *testing.T, fieldName, filename, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(int64(buf.Len()))
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	files := form.File[fieldName]
	if len(files) == 0 {
		t.Fatalf("no file headers found")
	}
	return files[0]
}
