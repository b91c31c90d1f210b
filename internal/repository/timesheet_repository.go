package repository

import (
	"github.com/yukikurage/crm-timesheet-api/internal/database"
	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"github.com/yukikurage/crm-timesheet-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTimesheetRepository is a GORM implementation of TimesheetRepository
type GormTimesheetRepository struct {
	db *gorm.DB
}

// NewTimesheetRepository creates a new TimesheetRepository
func NewTimesheetRepository(db *gorm.DB) TimesheetRepository {
	return &GormTimesheetRepository{db: db}
}

// Create stores the entry and starts its Open task in one transaction.
// A task id that matches no row leaves the entry in place.
func (r *GormTimesheetRepository) Create(entry *models.TimesheetEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(entry).Error; err != nil {
			return err
		}
		if entry.TaskID == nil {
			return nil
		}
		_, err := startOpenTasks(tx, []uint64{*entry.TaskID})
		return err
	})
}

// CreateBatch stores all entries and starts their Open tasks in one transaction
func (r *GormTimesheetRepository) CreateBatch(entries []*models.TimesheetEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(entries).Error; err != nil {
			return err
		}

		taskIDs := make([]uint64, 0, len(entries))
		for _, e := range entries {
			if e.TaskID != nil {
				taskIDs = append(taskIDs, *e.TaskID)
			}
		}
		_, err := startOpenTasks(tx, taskIDs)
		return err
	})
}

// FindByID finds an entry by ID
func (r *GormTimesheetRepository) FindByID(id uint64) (*models.TimesheetEntry, error) {
	var entry models.TimesheetEntry
	if err := r.db.First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// List retrieves entries newest work date first; same-day entries by start time, then newest id
func (r *GormTimesheetRepository) List(filter TimesheetFilter) ([]models.TimesheetEntry, int64, error) {
	var entries []models.TimesheetEntry

	query := r.db.Model(&models.TimesheetEntry{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.TaskID != nil {
		query = query.Where("task_id = ?", *filter.TaskID)
	}
	if filter.From != "" {
		query = query.Where("work_date >= ?", filter.From)
	}
	if filter.To != "" {
		query = query.Where("work_date <= ?", filter.To)
	}

	base := query.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := base.Order("work_date DESC").Order("start_time ASC").Order("id DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize)))
	}

	if err := listQuery.Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// Update saves the entry and optionally starts its Open task in the same transaction
func (r *GormTimesheetRepository) Update(entry *models.TimesheetEntry, startTask bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(entry).Error; err != nil {
			return err
		}
		if !startTask || entry.TaskID == nil {
			return nil
		}
		_, err := startOpenTasks(tx, []uint64{*entry.TaskID})
		return err
	})
}

// Delete removes an entry
func (r *GormTimesheetRepository) Delete(id uint64) error {
	res := r.db.Delete(&models.TimesheetEntry{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
