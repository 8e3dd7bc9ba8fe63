package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "grantia/internal/errors"
	"grantia/internal/models"
	"grantia/internal/planning"
)

// planningService handles activities, project teams, and weekly resource
// allocation.
type planningService struct {
	db *gorm.DB
}

// NewPlanningService creates a new PlanningServicer.
func NewPlanningService(db *gorm.DB) PlanningServicer {
	return &planningService{db: db}
}

func (s *planningService) requireProject(organizationID, projectID string) (*models.Project, error) {
	var project models.Project
	err := s.db.Where("id = ? AND organization_id = ?", projectID, organizationID).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &project, nil
}

// CreateActivity adds a work package to the project.
func (s *planningService) CreateActivity(organizationID, projectID, name string, startDate, endDate *time.Time, budgetAllocated float64) (*models.Activity, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "activity name is required")
	}
	if budgetAllocated < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget allocated cannot be negative")
	}

	if _, err := s.requireProject(organizationID, projectID); err != nil {
		return nil, err
	}

	activity := &models.Activity{
		ProjectID:       projectID,
		Name:            name,
		StartDate:       startDate,
		EndDate:         endDate,
		BudgetAllocated: budgetAllocated,
	}

	if err := s.db.Create(activity).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return activity, nil
}

// GetProjectActivities lists the project's activities in creation order.
func (s *planningService) GetProjectActivities(organizationID, projectID string) ([]models.Activity, error) {
	if _, err := s.requireProject(organizationID, projectID); err != nil {
		return nil, err
	}

	var activities []models.Activity
	if err := s.db.Where("project_id = ?", projectID).Order("created_at").Find(&activities).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return activities, nil
}

// AddTeamMember adds a user of the same organization to the project team.
func (s *planningService) AddTeamMember(organizationID, projectID, userID, roleInProject string, allocationPercentage float64) (*models.TeamMember, error) {
	if _, err := s.requireProject(organizationID, projectID); err != nil {
		return nil, err
	}

	var userCount int64
	s.db.Model(&models.User{}).Where("id = ? AND organization_id = ?", userID, organizationID).Count(&userCount)
	if userCount == 0 {
		return nil, apperrors.ErrUserNotFound
	}

	var existing int64
	s.db.Model(&models.TeamMember{}).Where("project_id = ? AND user_id = ?", projectID, userID).Count(&existing)
	if existing > 0 {
		return nil, apperrors.ErrAlreadyTeamMember
	}

	if roleInProject == "" {
		roleInProject = "Member"
	}
	if allocationPercentage <= 0 || allocationPercentage > 100 {
		allocationPercentage = 100
	}

	member := &models.TeamMember{
		ProjectID:            projectID,
		UserID:               userID,
		RoleInProject:        roleInProject,
		AllocationPercentage: allocationPercentage,
	}

	if err := s.db.Create(member).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Preload("User").First(member, "id = ?", member.ID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return member, nil
}

// GetProjectTeam lists the project's team members with their users.
func (s *planningService) GetProjectTeam(organizationID, projectID string) ([]models.TeamMember, error) {
	if _, err := s.requireProject(organizationID, projectID); err != nil {
		return nil, err
	}

	var team []models.TeamMember
	if err := s.db.Preload("User").Where("project_id = ?", projectID).Order("created_at").Find(&team).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return team, nil
}

// SaveAllocations bulk-upserts planner cells on their natural key
// (user_id, activity_id, week_start_date). Later entries for the same
// cell overwrite earlier ones. Entries with a week start that is not a
// Monday, or an activity outside the project, are rejected outright.
func (s *planningService) SaveAllocations(organizationID, projectID string, entries []planning.Entry) (int, error) {
	if _, err := s.requireProject(organizationID, projectID); err != nil {
		return 0, err
	}

	activities, err := s.GetProjectActivities(organizationID, projectID)
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(activities))
	for _, act := range activities {
		known[act.ID] = true
	}

	for _, e := range entries {
		if !planning.IsWeekStart(e.WeekStartDate) {
			return 0, apperrors.ErrNotWeekStart
		}
		if e.ActivityID != "" && !known[e.ActivityID] {
			return 0, apperrors.ErrActivityNotFound
		}
		if e.Hours < 0 {
			return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "hours cannot be negative")
		}
	}

	records := planning.Records(projectID, entries)
	if len(records) == 0 {
		return 0, nil
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "activity_id"}, {Name: "week_start_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"hours", "updated_at"}),
	}).Create(&records).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return len(records), nil
}

// GetProjectAllocations lists every allocation row of the project.
func (s *planningService) GetProjectAllocations(organizationID, projectID string) ([]models.Allocation, error) {
	if _, err := s.requireProject(organizationID, projectID); err != nil {
		return nil, err
	}

	var allocations []models.Allocation
	if err := s.db.Where("project_id = ?", projectID).Order("week_start_date").Find(&allocations).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return allocations, nil
}

// BuildPlannerView assembles the capacity board for the project team over
// the given week window. Allocations of team members on other projects
// are fetched too, so competing load shows up in the capacity figures.
func (s *planningService) BuildPlannerView(organizationID, projectID string, from, to time.Time) (*PlannerView, error) {
	if _, err := s.requireProject(organizationID, projectID); err != nil {
		return nil, err
	}

	activities, err := s.GetProjectActivities(organizationID, projectID)
	if err != nil {
		return nil, err
	}

	team, err := s.GetProjectTeam(organizationID, projectID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(team))
	for _, member := range team {
		userIDs = append(userIDs, member.UserID)
	}

	weeks := planning.WeeksBetween(from, to)
	weekKeys := make([]string, 0, len(weeks))
	for _, w := range weeks {
		weekKeys = append(weekKeys, planning.WeekKey(w))
	}

	var allocations []models.Allocation
	if len(userIDs) > 0 && len(weeks) > 0 {
		err = s.db.
			Where("user_id IN ?", userIDs).
			Where("week_start_date >= ? AND week_start_date <= ?", weeks[0], weeks[len(weeks)-1]).
			Find(&allocations).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	board := planning.BuildBoard(allocations, projectID)

	users := make([]PlannerUserRow, 0, len(team))
	for _, member := range team {
		row := PlannerUserRow{
			UserID:         member.UserID,
			WeeklyCapacity: models.DefaultWeeklyCapacity,
			Weeks:          make([]planning.WeekStat, 0, len(weekKeys)),
		}
		if member.User != nil {
			row.FullName = member.User.FullName
			row.WeeklyCapacity = member.User.WeeklyCapacity
		}
		for _, week := range weekKeys {
			row.Weeks = append(row.Weeks, board.Stat(member.UserID, week, row.WeeklyCapacity, activities))
		}
		users = append(users, row)
	}

	cells := make([]planning.Entry, 0, len(board.Cells))
	draft := planning.NewDraft(board)
	cells = append(cells, draft.Entries()...)

	return &PlannerView{
		ProjectID: projectID,
		Weeks:     weekKeys,
		Users:     users,
		Cells:     cells,
	}, nil
}
