package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yegors/skyglyde/internal/booking"
	"github.com/yegors/skyglyde/pkg/logger"
)

// ErrBookingNotFound is returned when no booking has the requested ID
var ErrBookingNotFound = errors.New("booking not found")

const bookingColumns = `id, destination, passengers, vehicles, departure_skyport_id, arrival_skyport_id, transport_to, transport_from, estimated_total_eur, created_at`

// BookingStorage is the ledger of confirmed bookings
type BookingStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

var _ booking.Submitter = (*BookingStorage)(nil)

// NewBookingStorage creates the storage and its tables
func NewBookingStorage(db *sql.DB, log *logger.Logger) (*BookingStorage, error) {
	storage := &BookingStorage{
		db:     db,
		logger: log.Named("sqlite-bookings"),
	}

	if err := storage.initDB(); err != nil {
		storage.logger.Error("Failed to initialize booking storage", logger.Error(err))
		return nil, err
	}

	return storage, nil
}

// initDB initializes the database tables
func (s *BookingStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			destination TEXT NOT NULL,
			passengers INTEGER NOT NULL CHECK (passengers >= 1),
			vehicles INTEGER NOT NULL,
			departure_skyport_id INTEGER NOT NULL,
			arrival_skyport_id INTEGER NOT NULL,
			transport_to TEXT NOT NULL,
			transport_from TEXT NOT NULL,
			estimated_total_eur INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create bookings table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_bookings_created_at ON bookings(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_departure ON bookings(departure_skyport_id)`,
	}
	for _, indexSQL := range indexes {
		if _, err := s.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create booking index: %w", err)
		}
	}

	return nil
}

// SubmitBooking stores a confirmed booking. It implements booking.Submitter.
func (s *BookingStorage) SubmitBooking(ctx context.Context, b *booking.Booking) error {
	record := recordFromBooking(b)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Destination,
		record.Passengers,
		record.Vehicles,
		record.DepartureSkyportID,
		record.ArrivalSkyportID,
		record.TransportTo,
		record.TransportFrom,
		record.EstimatedTotalEUR,
		record.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	s.logger.Debug("Stored booking",
		logger.String("booking_id", record.ID),
		logger.String("destination", record.Destination))
	return nil
}

// GetBooking returns one booking by ID
func (s *BookingStorage) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query booking: %w", err)
	}
	defer rows.Close()

	bookings, err := s.scanBookingRows(rows)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, ErrBookingNotFound
	}
	return bookings[0], nil
}

// GetRecentBookings returns the newest bookings first
func (s *BookingStorage) GetRecentBookings(ctx context.Context, limit int) ([]*booking.Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent bookings: %w", err)
	}
	defer rows.Close()

	return s.scanBookingRows(rows)
}

// GetBookingsByTimeRange returns bookings created within a time range
func (s *BookingStorage) GetBookingsByTimeRange(ctx context.Context, start, end time.Time) ([]*booking.Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		WHERE created_at BETWEEN ? AND ?
		ORDER BY created_at DESC`,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings by time range: %w", err)
	}
	defer rows.Close()

	return s.scanBookingRows(rows)
}

// scanBookingRows scans database rows into bookings
func (s *BookingStorage) scanBookingRows(rows *sql.Rows) ([]*booking.Booking, error) {
	var bookings []*booking.Booking
	for rows.Next() {
		var record BookingRecord
		var createdAt string

		if err := rows.Scan(
			&record.ID,
			&record.Destination,
			&record.Passengers,
			&record.Vehicles,
			&record.DepartureSkyportID,
			&record.ArrivalSkyportID,
			&record.TransportTo,
			&record.TransportFrom,
			&record.EstimatedTotalEUR,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}

		var err error
		record.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		b, err := record.toBooking()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	return bookings, nil
}
