package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fire-triage/backend/internal/models"
)

// tickets.csv column headers, as exported by the CRM
const (
	colGUID       = "GUID клиента"
	colGender     = "Пол клиента"
	colBirthDate  = "Дата рождения"
	colDesc       = "Описание"
	colAttachment = "Вложения"
	colSegment    = "Сегмент клиента"
	colCountry    = "Страна"
	colRegion     = "Область"
	colCity       = "Населённый пункт"
	colStreet     = "Улица"
	colHouse      = "Дом"
)

func parseTicketsCSV(file *multipart.FileHeader) ([]models.Ticket, []string) {
	f, err := file.Open()
	if err != nil {
		return nil, []string{err.Error()}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, []string{"failed to read header"}
	}
	index := headerIndex(headers)
	if _, ok := index[strings.ToLower(colGUID)]; !ok {
		return nil, []string{fmt.Sprintf("missing required column %q", colGUID)}
	}

	var errs []string
	var out []models.Ticket
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errs = append(errs, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		get := func(col string) string {
			i, ok := index[strings.ToLower(col)]
			if !ok || i >= len(record) {
				return ""
			}
			return cleanCell(record[i])
		}

		guid, err := uuid.Parse(get(colGUID))
		if err != nil {
			errs = append(errs, fmt.Sprintf("line %d: invalid GUID %q", line, get(colGUID)))
			continue
		}

		out = append(out, models.Ticket{
			ID:          uuid.New(),
			GUID:        guid,
			Status:      models.StatusNew,
			Gender:      get(colGender),
			BirthDate:   get(colBirthDate),
			Description: get(colDesc),
			Attachment:  get(colAttachment),
			Segment:     get(colSegment),
			Country:     get(colCountry),
			Region:      get(colRegion),
			City:        get(colCity),
			Street:      get(colStreet),
			House:       get(colHouse),
			CreatedAt:   time.Now().UTC(),
		})
	}
	return out, errs
}

func parseManagersCSV(file *multipart.FileHeader, officeByCity map[string]uuid.UUID) ([]models.Manager, []string) {
	f, err := file.Open()
	if err != nil {
		return nil, []string{err.Error()}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, []string{"failed to read header"}
	}
	index := headerIndex(headers)
	for _, required := range []string{"name", "position", "office"} {
		if _, ok := index[required]; !ok {
			return nil, []string{fmt.Sprintf("missing required column %q", required)}
		}
	}

	var errs []string
	var out []models.Manager
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errs = append(errs, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return cleanCell(record[i])
		}

		officeID, ok := officeByCity[strings.ToLower(get("office"))]
		if !ok {
			errs = append(errs, fmt.Sprintf("line %d: unknown office %q", line, get("office")))
			continue
		}

		var skills []string
		for _, s := range strings.Split(get("skills"), ";") {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}
		if skills == nil {
			skills = []string{}
		}

		out = append(out, models.Manager{
			ID:       uuid.New(),
			Name:     get("name"),
			Position: get("position"),
			OfficeID: officeID,
			Skills:   skills,
		})
	}
	return out, errs
}

func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return index
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "nan") {
		return ""
	}
	return v
}
