package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/rehabnet/rehabtracking/backend/internal/adapters/database"
	"github.com/rehabnet/rehabtracking/backend/internal/application/services"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
	"github.com/rehabnet/rehabtracking/backend/internal/infrastructure/clients/postgres"
	"github.com/rehabnet/rehabtracking/backend/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS patients (
	rehab_patient_id      TEXT PRIMARY KEY,
	hospital_patient_id   TEXT NOT NULL,
	username              TEXT NOT NULL,
	email                 TEXT NOT NULL,
	mobile_number         TEXT NOT NULL DEFAULT '',
	streak                INTEGER NOT NULL DEFAULT 0,
	last_streak_update    TIMESTAMPTZ,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS rehab_profiles (
	id                  TEXT PRIMARY KEY,
	rehab_patient_id    TEXT NOT NULL UNIQUE,
	assigned_doctor_id  TEXT NOT NULL,
	primary_diagnosis   TEXT,
	rehab_start_date    TIMESTAMPTZ,
	rehab_end_date      TIMESTAMPTZ,
	status              TEXT NOT NULL DEFAULT 'active',
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS exercises (
	id                    TEXT PRIMARY KEY,
	rehab_patient_id      TEXT NOT NULL,
	exercise_kind         TEXT NOT NULL,
	number_of_sets        INTEGER NOT NULL,
	time_per_set_seconds  INTEGER NOT NULL,
	confidence_threshold  INTEGER NOT NULL,
	completed_sets        JSONB NOT NULL DEFAULT '[]',
	last_updated          TIMESTAMPTZ NOT NULL,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_exercises_patient ON exercises (rehab_patient_id);

CREATE TABLE IF NOT EXISTS progress_logs (
	id                      TEXT PRIMARY KEY,
	rehab_patient_id        TEXT NOT NULL,
	visit_date              DATE NOT NULL,
	pain_level              INTEGER,
	confidence_level        INTEGER,
	notes                   TEXT,
	exercise_performance    JSONB NOT NULL DEFAULT '[]',
	completed_exercise_ids  JSONB NOT NULL DEFAULT '[]',
	created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (rehab_patient_id, visit_date)
);
CREATE INDEX IF NOT EXISTS idx_progress_logs_patient_day ON progress_logs (rehab_patient_id, visit_date);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			DROP TABLE IF EXISTS
				progress_logs,
				exercises,
				rehab_profiles,
				patients
			CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}
	log.Println("Schema ensured")

	patientRepo := database.NewPatientAdapter(pgClient)
	exerciseRepo := database.NewExerciseAdapter(pgClient)
	logRepo := database.NewProgressLogAdapter(pgClient)
	progressService := services.NewProgressService(logRepo, patientRepo, exerciseRepo, nil)
	exerciseService := services.NewExerciseService(exerciseRepo, progressService, nil)

	// 1. Seed a sample patient with an assigned doctor
	doctorID := "doctor-demo"
	rehabPatientID := "patient-demo"

	_, err = pgClient.DB().ExecContext(ctx, `
		INSERT INTO patients (rehab_patient_id, hospital_patient_id, username, email, mobile_number)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (rehab_patient_id) DO NOTHING
	`, rehabPatientID, "HOSP-0001", "demo.patient", "demo.patient@example.com", "+15550100")
	if err != nil {
		log.Fatalf("Failed to seed patient: %v", err)
	}

	_, err = pgClient.DB().ExecContext(ctx, `
		INSERT INTO rehab_profiles (id, rehab_patient_id, assigned_doctor_id, primary_diagnosis, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (rehab_patient_id) DO NOTHING
	`, uuid.New().String(), rehabPatientID, doctorID, "ACL reconstruction", string(entities.RehabStatusActive))
	if err != nil {
		log.Fatalf("Failed to seed rehab profile: %v", err)
	}

	// 2. Seed a prescription, using the service so defaults apply
	existing, err := exerciseRepo.CountByPatient(ctx, rehabPatientID)
	if err != nil {
		log.Fatalf("Failed to count exercises: %v", err)
	}
	if existing == 0 {
		exercise, err := exerciseService.Assign(ctx, services.AssignExerciseInput{
			RehabPatientID: rehabPatientID,
			ExerciseKind:   entities.ExerciseKindTreePose,
		})
		if err != nil {
			log.Fatalf("Failed to seed exercise: %v", err)
		}
		log.Printf("Seeded exercise %s for %s", exercise.ID, rehabPatientID)
	}

	log.Printf("Seeding complete at %s", time.Now().Format(time.RFC3339))
}
