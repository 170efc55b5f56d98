// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/avikko/labelrun-go/internal/conf"
	"github.com/avikko/labelrun-go/internal/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Interface abstracts the underlying database implementation and defines the
// operations the print core and the reporting surface need.
type Interface interface {
	Open() error
	Close() error

	// design storage
	SaveDesign(design *Design) error
	GetDesign(id uint) (Design, error)
	GetDesignByName(name string) (Design, error)
	ListDesigns() ([]Design, error)

	// serial ledger
	LastIssued(designID uint) (int, error)
	Append(entry *PrintLog) error
	SearchPrintLogs(filter PrintLogFilter) ([]PrintLogRecord, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new store instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// SaveDesign inserts a new design or updates an existing one.
func (ds *DataStore) SaveDesign(design *Design) error {
	if design.Name == "" {
		return errors.Newf("design name must not be empty").
			Category(errors.CategoryValidation).
			Build()
	}
	if err := ds.DB.Save(design).Error; err != nil {
		return errors.New(fmt.Errorf("saving design %q: %w", design.Name, err)).
			Category(errors.CategoryDatabase).
			Context("design_name", design.Name).
			Build()
	}
	return nil
}

// GetDesign retrieves a design by its ID.
func (ds *DataStore) GetDesign(id uint) (Design, error) {
	var design Design
	if err := ds.DB.First(&design, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Design{}, errors.Newf("design %d not found", id).
				Category(errors.CategoryNotFound).
				Context("design_id", id).
				Build()
		}
		return Design{}, errors.New(fmt.Errorf("getting design %d: %w", id, err)).
			Category(errors.CategoryDatabase).
			Build()
	}
	return design, nil
}

// GetDesignByName retrieves a design by its name.
func (ds *DataStore) GetDesignByName(name string) (Design, error) {
	var design Design
	if err := ds.DB.Where("name = ?", name).First(&design).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Design{}, errors.Newf("design %q not found", name).
				Category(errors.CategoryNotFound).
				Context("design_name", name).
				Build()
		}
		return Design{}, errors.New(fmt.Errorf("getting design %q: %w", name, err)).
			Category(errors.CategoryDatabase).
			Build()
	}
	return design, nil
}

// ListDesigns retrieves all designs, newest first.
func (ds *DataStore) ListDesigns() ([]Design, error) {
	var designs []Design
	if err := ds.DB.Order("created_at DESC").Find(&designs).Error; err != nil {
		return nil, errors.New(fmt.Errorf("listing designs: %w", err)).
			Category(errors.CategoryDatabase).
			Build()
	}
	return designs, nil
}

// LastIssued returns the maximum serial ever logged for a design, or 0 when
// the design has no entries. Reprint rows participate in the maximum; since a
// reprint reuses a serial at or below the historical maximum it can never
// move the resume point.
func (ds *DataStore) LastIssued(designID uint) (int, error) {
	var last int
	err := ds.DB.Model(&PrintLog{}).
		Where("design_id = ?", designID).
		Select("COALESCE(MAX(serial), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, errors.New(fmt.Errorf("querying last serial for design %d: %w", designID, err)).
			Category(errors.CategoryDatabase).
			Context("design_id", designID).
			Build()
	}
	return last, nil
}

// Append durably records one issued serial. The ledger is append-only;
// out-of-order serials are accepted deliberately (reprints reuse old
// serials). A failure here breaks the audit guarantee for an already
// dispatched label, so it carries the ledger-write category and callers must
// treat it as batch-fatal.
func (ds *DataStore) Append(entry *PrintLog) error {
	if entry.Serial < 0 {
		return errors.Newf("serial must be non-negative, got %d", entry.Serial).
			Category(errors.CategoryValidation).
			Build()
	}
	if entry.IssuedAt.IsZero() {
		entry.IssuedAt = time.Now().UTC()
	} else {
		entry.IssuedAt = entry.IssuedAt.UTC()
	}

	if err := ds.DB.Create(entry).Error; err != nil {
		return errors.New(fmt.Errorf("appending ledger entry for design %d serial %d: %w",
			entry.DesignID, entry.Serial, err)).
			Category(errors.CategoryLedgerWrite).
			Context("design_id", entry.DesignID).
			Context("serial", entry.Serial).
			Build()
	}
	return nil
}

// SearchPrintLogs returns ledger rows joined with design names, filtered and
// ordered by issuance time descending. Read-only; used by the reporting layer.
func (ds *DataStore) SearchPrintLogs(filter PrintLogFilter) ([]PrintLogRecord, error) {
	query := ds.DB.Table("print_logs").
		Select("print_logs.id, print_logs.design_id, designs.name AS design_name, print_logs.serial, print_logs.issued_at, print_logs.reprint").
		Joins("JOIN designs ON designs.id = print_logs.design_id")

	if filter.DesignName != "" {
		query = query.Where("designs.name LIKE ? ESCAPE '|'", "%"+escapeLike(filter.DesignName)+"%")
	}
	if filter.Serial != nil {
		query = query.Where("print_logs.serial = ?", *filter.Serial)
	}
	if filter.From != nil {
		query = query.Where("print_logs.issued_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("print_logs.issued_at <= ?", filter.To.UTC())
	}

	var records []PrintLogRecord
	if err := query.Order("print_logs.issued_at DESC").Scan(&records).Error; err != nil {
		return nil, errors.New(fmt.Errorf("searching print logs: %w", err)).
			Category(errors.CategoryDatabase).
			Build()
	}
	return records, nil
}

// escapeLike neutralizes LIKE metacharacters in user-supplied filter text so
// names containing % or _ match literally. The pipe escape character works
// unmodified on both SQLite and MySQL.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer("|", "||", "%", "|%", "_", "|_")

// performAutoMigration automates database migrations with error handling.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&Design{}, &PrintLog{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)
}
