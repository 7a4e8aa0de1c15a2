package services

import (
	"quitcoach/backend/config"
	"quitcoach/backend/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCheckinValidation(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewProgressService(db, cfg)
	user := createUser(t, db, "validation")
	plan := createPlan(t, db, cfg, user.ID, 20, 5)

	_, err := svc.RecordCheckin(user.ID, CheckinInput{
		Date: daysFromNow(0), TargetCigarettes: 10, ActualCigarettes: 5,
	})
	assert.ErrorIs(t, err, ErrValidation, "missing plan id must be rejected")

	_, err = svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: plan.ID, Date: "not-a-date", TargetCigarettes: 10, ActualCigarettes: 5,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: plan.ID, Date: daysFromNow(0), TargetCigarettes: -1, ActualCigarettes: 5,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: 9999, Date: daysFromNow(0), TargetCigarettes: 10, ActualCigarettes: 5,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordCheckinOwnership(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewProgressService(db, cfg)
	owner := createUser(t, db, "owner")
	other := createUser(t, db, "other")
	plan := createPlan(t, db, cfg, owner.ID, 20, 5)

	_, err := svc.RecordCheckin(other.ID, CheckinInput{
		PlanID: plan.ID, Date: daysFromNow(0), TargetCigarettes: 10, ActualCigarettes: 5,
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

// Scenario: baseline 20/day, three consecutive days.
func TestStreakProgression(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewProgressService(db, cfg)
	user := createUser(t, db, "streaks")
	plan := createPlan(t, db, cfg, user.ID, 20, 5)

	day1, err := svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: plan.ID, Date: daysFromNow(-2), TargetCigarettes: 15, ActualCigarettes: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, day1.CigarettesAvoided)
	assert.Equal(t, 0, day1.StreakCount)

	day2, err := svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: plan.ID, Date: daysFromNow(-1), TargetCigarettes: 10, ActualCigarettes: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, day2.CigarettesAvoided)
	assert.Equal(t, 1, day2.StreakCount)

	day3, err := svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: plan.ID, Date: daysFromNow(0), TargetCigarettes: 10, ActualCigarettes: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, day3.StreakCount)
}

func TestStreakBreaksOnGap(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewProgressService(db, cfg)
	user := createUser(t, db, "gaps")
	plan := createPlan(t, db, cfg, user.ID, 20, 10)

	_, err := svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: plan.ID, Date: daysFromNow(-5), TargetCigarettes: 5, ActualCigarettes: 0,
	})
	require.NoError(t, err)

	// Two days later: the chain is broken, the streak restarts at 1.
	entry, err := svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: plan.ID, Date: daysFromNow(-3), TargetCigarettes: 5, ActualCigarettes: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, entry.StreakCount)
}

// The historical streak policy looks across all of the user's plans.
func TestStreakGlobalAcrossPlans(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewProgressService(db, cfg)
	user := createUser(t, db, "crossplan")
	planA := createPlan(t, db, cfg, user.ID, 20, 10)
	planB := createPlan(t, db, cfg, user.ID, 20, 10)

	_, err := svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: planA.ID, Date: daysFromNow(-1), TargetCigarettes: 5, ActualCigarettes: 0,
	})
	require.NoError(t, err)

	entry, err := svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: planB.ID, Date: daysFromNow(0), TargetCigarettes: 5, ActualCigarettes: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, entry.StreakCount, "global policy continues the streak from another plan")
}

func TestStreakPerPlanPolicy(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	cfg.StreakPolicy = config.StreakPolicyPerPlan
	svc := NewProgressService(db, cfg)
	user := createUser(t, db, "perplan")
	planA := createPlan(t, db, cfg, user.ID, 20, 10)
	planB := createPlan(t, db, cfg, user.ID, 20, 10)

	_, err := svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: planA.ID, Date: daysFromNow(-1), TargetCigarettes: 5, ActualCigarettes: 0,
	})
	require.NoError(t, err)

	entry, err := svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: planB.ID, Date: daysFromNow(0), TargetCigarettes: 5, ActualCigarettes: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, entry.StreakCount, "per-plan policy ignores the other plan's entry")
}

// Duplicate (user, plan, date) is a conflict and leaves exactly one row.
func TestDuplicateCheckinConflict(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewProgressService(db, cfg)
	user := createUser(t, db, "dupes")
	plan := createPlan(t, db, cfg, user.ID, 20, 5)
	date := daysFromNow(0)

	_, err := svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: plan.ID, Date: date, TargetCigarettes: 10, ActualCigarettes: 5,
	})
	require.NoError(t, err)

	_, err = svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: plan.ID, Date: date, TargetCigarettes: 8, ActualCigarettes: 3,
	})
	assert.ErrorIs(t, err, ErrConflict)

	var count int64
	require.NoError(t, db.Model(&models.DailyProgress{}).
		Where("user_id = ? AND plan_id = ? AND entry_date = ?", user.ID, plan.ID, date).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDerivedFields(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewProgressService(db, cfg)
	user := createUser(t, db, "derived")
	plan := createPlan(t, db, cfg, user.ID, 20, 5)

	entry, err := svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: plan.ID, Date: daysFromNow(-1), TargetCigarettes: 12, ActualCigarettes: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, entry.CigarettesAvoided)
	assert.InDelta(t, 80.0, entry.ProgressPercent, 0.001)

	// Actual above target never yields a negative avoided count.
	entry, err = svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: plan.ID, Date: daysFromNow(0), TargetCigarettes: 4, ActualCigarettes: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, entry.CigarettesAvoided)
}

func TestAvoidedOverride(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewProgressService(db, cfg)
	user := createUser(t, db, "override")
	plan := createPlan(t, db, cfg, user.ID, 20, 5)

	entry, err := svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: plan.ID, Date: daysFromNow(0),
		TargetCigarettes: 10, ActualCigarettes: 5,
		CigarettesAvoided: intPtr(17),
	})
	require.NoError(t, err)
	assert.Equal(t, 17, entry.CigarettesAvoided, "explicit override wins over the derived value")
}

// Updating day 1 from smoke-free to smoked resets its streak.
func TestUpdateCheckinStreakRecompute(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewProgressService(db, cfg)
	user := createUser(t, db, "updates")
	plan := createPlan(t, db, cfg, user.ID, 20, 5)
	date := daysFromNow(0)

	entry, err := svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: plan.ID, Date: date, TargetCigarettes: 10, ActualCigarettes: 0,
	})
	require.NoError(t, err)
	require.Equal(t, 1, entry.StreakCount)

	updated, err := svc.UpdateCheckin(user.ID, plan.ID, date, CheckinPatch{
		ActualCigarettes: intPtr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.StreakCount)
	assert.Equal(t, 5, updated.CigarettesAvoided, "avoided recomputed from target 10")

	// And back: a smoke-free flip re-derives from the prior day.
	updated, err = svc.UpdateCheckin(user.ID, plan.ID, date, CheckinPatch{
		ActualCigarettes: intPtr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.StreakCount)
}

func TestUpdateCheckinPartialPatch(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewProgressService(db, cfg)
	user := createUser(t, db, "partial")
	plan := createPlan(t, db, cfg, user.ID, 20, 5)
	date := daysFromNow(0)

	_, err := svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: plan.ID, Date: date, TargetCigarettes: 10, ActualCigarettes: 0,
		Notes: "good day", MoneySaved: 4.5,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateCheckin(user.ID, plan.ID, date, CheckinPatch{
		Notes: strPtr("great day"), HealthScore: intPtr(8),
	})
	require.NoError(t, err)
	assert.Equal(t, "great day", updated.Notes)
	assert.Equal(t, 8, updated.HealthScore)
	assert.Equal(t, 0, updated.ActualCigarettes, "untouched fields keep their values")
	assert.Equal(t, 1, updated.StreakCount)
	assert.InDelta(t, 4.5, updated.MoneySaved, 0.001)
}

func TestUpdateCheckinMissing(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewProgressService(db, cfg)
	user := createUser(t, db, "missing")
	plan := createPlan(t, db, cfg, user.ID, 20, 5)

	_, err := svc.UpdateCheckin(user.ID, plan.ID, daysFromNow(0), CheckinPatch{Notes: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateCheckin(user.ID, 0, daysFromNow(0), CheckinPatch{Notes: strPtr("x")})
	assert.ErrorIs(t, err, ErrValidation, "plan-less update is rejected")
}

func TestDeleteCheckin(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewProgressService(db, cfg)
	user := createUser(t, db, "deletes")
	plan := createPlan(t, db, cfg, user.ID, 20, 5)
	date := daysFromNow(0)

	_, err := svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: plan.ID, Date: date, TargetCigarettes: 10, ActualCigarettes: 3,
	})
	require.NoError(t, err)

	snapshot, err := svc.DeleteCheckin(user.ID, plan.ID, date)
	require.NoError(t, err)
	assert.Equal(t, 3, snapshot.ActualCigarettes)

	_, err = svc.DeleteCheckin(user.ID, plan.ID, date)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearAllScoped(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewProgressService(db, cfg)
	user := createUser(t, db, "clears")
	planA := createPlan(t, db, cfg, user.ID, 20, 10)
	planB := createPlan(t, db, cfg, user.ID, 20, 10)

	for i := 0; i < 3; i++ {
		_, err := svc.RecordCheckin(user.ID, CheckinInput{
			PlanID: planA.ID, Date: daysFromNow(-i), TargetCigarettes: 10, ActualCigarettes: 5,
		})
		require.NoError(t, err)
	}
	_, err := svc.RecordCheckin(user.ID, CheckinInput{
		PlanID: planB.ID, Date: daysFromNow(-4), TargetCigarettes: 10, ActualCigarettes: 5,
	})
	require.NoError(t, err)

	count, err := svc.ClearAll(user.ID, &planA.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	var remaining int64
	require.NoError(t, db.Model(&models.DailyProgress{}).
		Where("user_id = ?", user.ID).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining, "the other plan's entries survive")
}

func TestListCheckins(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewProgressService(db, cfg)
	user := createUser(t, db, "lists")
	plan := createPlan(t, db, cfg, user.ID, 20, 10)

	for i := 0; i < 5; i++ {
		_, err := svc.RecordCheckin(user.ID, CheckinInput{
			PlanID: plan.ID, Date: daysFromNow(-i), TargetCigarettes: 10, ActualCigarettes: i,
		})
		require.NoError(t, err)
	}

	_, err := svc.ListCheckins(user.ID, ListQuery{})
	assert.ErrorIs(t, err, ErrValidation, "planId is mandatory")

	entries, err := svc.ListCheckins(user.ID, ListQuery{PlanID: plan.ID, Limit: 3})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, daysFromNow(0), entries[0].EntryDate, "newest first")

	entries, err = svc.ListCheckins(user.ID, ListQuery{
		PlanID: plan.ID, StartDate: daysFromNow(-2), EndDate: daysFromNow(-1),
	})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestMilestoneMarkedByCheckin(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	progressSvc := NewProgressService(db, cfg)
	planSvc := NewPlanService(db, cfg, progressSvc)
	user := createUser(t, db, "milestones")

	plan, err := planSvc.CreatePlan(user.ID, CreatePlanInput{
		PlanName:          "Weekly targets",
		Strategy:          models.StrategyGradual,
		InitialCigarettes: 20,
		StartDate:         daysFromNow(-3),
		TotalWeeks:        2,
		Weeks:             []int{15, 10},
	})
	require.NoError(t, err)

	// Day 3 of week 1: meeting the 15-cigarette target flips the milestone.
	_, err = progressSvc.RecordCheckin(user.ID, CheckinInput{
		PlanID: plan.ID, Date: daysFromNow(0), TargetCigarettes: 15, ActualCigarettes: 12,
	})
	require.NoError(t, err)

	var milestone models.PlanMilestone
	require.NoError(t, db.Where("plan_id = ? AND week_number = 1", plan.ID).First(&milestone).Error)
	assert.True(t, milestone.Achieved)
	assert.Equal(t, daysFromNow(0), milestone.AchievedDate)
}
