package manifest

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"manifest-service/pkg/logger"
)

// Parser turns manifest document text into ParsedService records. Each
// parse call is independent and returns a fresh Result, so a single
// Parser is safe to share across goroutines.
type Parser struct {
	logger logger.Logger
}

// NewParser creates a manifest parser.
func NewParser(logger logger.Logger) *Parser {
	return &Parser{logger: logger}
}

// ParseFile extracts text from a .docx manifest on disk and parses it.
// Load failures are recorded in Result.Errors, never returned as an
// error; a failed load yields zero services.
func (p *Parser) ParseFile(path string) *Result {
	res := &Result{}

	content, err := ExtractDocxText(path)
	if err != nil {
		p.logger.Error("Failed to read manifest document", "path", path, "error", err)
		res.Errors = append(res.Errors, fmt.Sprintf("error reading document %s: %v", path, err))
		return res
	}

	p.parseContent(content, res)
	return res
}

// ParseAttachment parses in-memory .docx content, e.g. an email
// attachment. Same contract as ParseFile.
func (p *Parser) ParseAttachment(name string, data io.ReaderAt, size int64) *Result {
	res := &Result{}

	content, err := ExtractDocxBytes(data, size)
	if err != nil {
		p.logger.Error("Failed to read manifest attachment", "attachment", name, "error", err)
		res.Errors = append(res.Errors, fmt.Sprintf("error reading attachment %s: %v", name, err))
		return res
	}

	p.parseContent(content, res)
	return res
}

// Parse parses raw manifest text. This is the primary entry point for
// callers that already hold plain text.
func (p *Parser) Parse(content string) *Result {
	res := &Result{}
	p.parseContent(content, res)
	return res
}

func (p *Parser) parseContent(content string, res *Result) {
	blocks := splitServiceBlocks(content)

	for i, block := range blocks {
		svc := p.parseServiceBlock(i, block, res)
		if svc != nil {
			res.Services = append(res.Services, svc)
		}
	}

	p.logger.Info("Manifest parsed",
		"blocks", len(blocks),
		"services", len(res.Services),
		"errors", len(res.Errors),
		"warnings", len(res.Warnings))
}

// parseServiceBlock extracts one ParsedService from a block, or nil
// when the block is rejected. A panic inside extraction is recorded as
// an indexed error so one malformed block never aborts the batch.
func (p *Parser) parseServiceBlock(idx int, block string, res *Result) (svc *ParsedService) {
	defer func() {
		if r := recover(); r != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("error parsing service block %d: %v", idx+1, r))
			svc = nil
		}
	}()

	lines := blockLines(block)
	if len(lines) == 0 {
		return nil
	}

	// Action and date jointly identify which operation applies to
	// which order; a block that cannot yield both is skipped rather
	// than guessed at.
	action, serviceDate, ok := parseActionAndDate(lines[0])
	if !ok {
		res.Warnings = append(res.Warnings, fmt.Sprintf("service block %d has no recognizable action/date, skipped", idx+1))
		return nil
	}

	serviceID := extractBookingNumber(block)
	if serviceID == "" {
		res.Warnings = append(res.Warnings, fmt.Sprintf("no booking number found in service block %d", idx+1))
		return nil
	}

	serviceType, description := extractServiceDescription(lines)

	svc = &ParsedService{
		Action:      action,
		ServiceID:   serviceID,
		ServiceDate: serviceDate,
		ServiceType: serviceType,
		Description: description,
		RawData:     map[string]string{"original_block": block},
	}

	svc.VehicleModel, svc.VehicleCapacity = extractVehicle(block)
	svc.PassengerCountAdults, svc.PassengerCountChildren, svc.PassengerNames = extractPassengers(block)
	svc.ContactPhone = extractContactPhone(block)
	svc.PickupLocation, svc.PickupAddress = extractLocations(block)
	svc.PickupTime, svc.PickupTimeConfirmed = extractPickupTime(block)
	svc.FlightNumber = extractFlightNumber(block)
	svc.OperatorComments = extractComments(block)
	svc.MissingDataFlags = auditMissingData(svc)

	return svc
}

func blockLines(block string) []string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// parseActionAndDate reads the action keyword and service date from a
// block's first line. Two-digit years are mapped into the 2000s; the
// convention holds only while source data stays within that century.
func parseActionAndDate(firstLine string) (Action, time.Time, bool) {
	var action Action
	for _, ap := range actionPatterns {
		if ap.pattern.MatchString(firstLine) {
			action = ap.action
			break
		}
	}
	if action == "" {
		return "", time.Time{}, false
	}

	m := datePattern.FindStringSubmatch(firstLine)
	if m == nil {
		return "", time.Time{}, false
	}

	month, ok := monthMap[strings.ToLower(m[2])]
	if !ok {
		return "", time.Time{}, false
	}

	day, _ := strconv.Atoi(m[1])
	yy, _ := strconv.Atoi(m[3])
	year := 2000 + yy

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day || date.Month() != time.Month(month) {
		// time.Date normalizes out-of-range days; treat that as an
		// unparseable date.
		return "", time.Time{}, false
	}

	return action, date, true
}

func extractBookingNumber(block string) string {
	if m := bookingPattern.FindStringSubmatch(block); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// extractServiceDescription scans the first few lines for a
// service-type keyword and joins the following lines into a
// best-effort description. The description is presentational only.
func extractServiceDescription(lines []string) (string, string) {
	serviceType := "Unknown"

scan:
	for _, line := range headLines(lines, 5) {
		for _, keyword := range serviceTypeKeywords {
			if strings.Contains(strings.ToLower(line), strings.ToLower(keyword)) {
				serviceType = keyword
				break scan
			}
		}
	}

	var descLines []string
	for _, line := range headLines(lines, 10)[1:] {
		if bookingPattern.MatchString(line) {
			continue
		}
		descLines = append(descLines, line)
	}

	return serviceType, strings.Join(descLines, " ")
}

func extractVehicle(block string) (model, capacity string) {
	for _, re := range vehiclePatterns {
		if m := re.FindStringSubmatch(block); m != nil {
			return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		}
	}
	return "", ""
}

func extractPassengers(block string) (adults, children int, names []string) {
	for _, m := range passengerPattern.FindAllStringSubmatch(block, -1) {
		if strings.EqualFold(m[1], "Adult") {
			adults++
		} else {
			children++
		}
		if name := cleanPassengerName(m[2]); name != "" {
			names = append(names, name)
		}
	}
	return adults, children, names
}

// Honorifics are dropped so stored names line up with the booking
// system's own passenger records.
var honorifics = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "miss": true,
	"master": true, "mstr": true, "dr": true,
}

func cleanPassengerName(raw string) string {
	name := strings.TrimSpace(strings.ReplaceAll(raw, ":", ""))

	if first, rest, ok := strings.Cut(name, " "); ok {
		if honorifics[strings.ToLower(strings.TrimSuffix(first, "."))] {
			name = strings.TrimSpace(rest)
		}
	}

	return name
}

func extractContactPhone(block string) string {
	for _, re := range phonePatterns {
		if m := re.FindStringSubmatch(block); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func extractLocations(block string) (pickupLocation, pickupAddress string) {
	if m := hotelPattern.FindStringSubmatch(block); m != nil {
		pickupLocation = strings.TrimSpace(m[1])
	}
	if m := addressPattern.FindStringSubmatch(block); m != nil {
		pickupAddress = strings.TrimSpace(m[1])
	}
	return pickupLocation, pickupAddress
}

func extractPickupTime(block string) (string, bool) {
	for _, re := range pickupTimePatterns {
		if m := re.FindStringSubmatch(block); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

// extractFlightNumber assigns only the flight-number pattern; the
// departure/arrival patterns stay unmapped for now (see patterns.go).
func extractFlightNumber(block string) string {
	if m := flightNumberPattern.FindStringSubmatch(block); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractComments(block string) string {
	var comments []string
	for _, re := range commentPatterns {
		for _, m := range re.FindAllStringSubmatch(block, -1) {
			if c := strings.TrimSpace(m[1]); c != "" {
				comments = append(comments, c)
			}
		}
	}
	return strings.Join(comments, "; ")
}

// auditMissingData lists the critical fields absent from a completed
// record, in a fixed order. Non-empty flags mean the record needs
// human review before it is trusted downstream.
func auditMissingData(svc *ParsedService) []string {
	missing := []string{}

	if svc.PickupTime == "" {
		missing = append(missing, "pickup_time")
	}
	if svc.PickupLocation == "" {
		missing = append(missing, "pickup_location")
	}
	if svc.ContactPhone == "" {
		missing = append(missing, "contact_phone")
	}
	if len(svc.PassengerNames) == 0 {
		missing = append(missing, "passenger_names")
	}
	if svc.VehicleModel == "" {
		missing = append(missing, "vehicle_model")
	}

	return missing
}

func headLines(lines []string, n int) []string {
	if len(lines) < n {
		return lines
	}
	return lines[:n]
}
