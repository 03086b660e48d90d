package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Core hiring entities
			CREATE TABLE jobs (
				id VARCHAR(255) PRIMARY KEY,
				title VARCHAR(255) NOT NULL,
				description TEXT NOT NULL,
				department VARCHAR(255),
				location VARCHAR(255),
				required_technologies JSONB DEFAULT '[]',
				experience_required VARCHAR(255),
				status VARCHAR(50) NOT NULL CHECK (status IN ('active', 'paused', 'closed')),
				positions_available INT NOT NULL DEFAULT 1,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_jobs_status ON jobs(status);
			CREATE INDEX idx_jobs_created_at ON jobs(created_at);

			CREATE TABLE interviewers (
				id VARCHAR(255) PRIMARY KEY,
				job_id VARCHAR(255) NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) NOT NULL,
				role VARCHAR(255),
				technologies JSONB DEFAULT '[]',
				max_interviews_per_day INT NOT NULL DEFAULT 3,
				timezone VARCHAR(100)
			);

			CREATE INDEX idx_interviewers_job_id ON interviewers(job_id);

			CREATE TABLE candidates (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) NOT NULL,
				phone VARCHAR(100),
				experience_years INT NOT NULL DEFAULT 0,
				technologies JSONB DEFAULT '[]',
				resume_text TEXT,
				time_availability VARCHAR(255),
				stage VARCHAR(50) NOT NULL,
				job_id VARCHAR(255) NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
				workflow_id VARCHAR(255),
				overall_score DOUBLE PRECISION,
				match_percentage INT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_candidates_job_id ON candidates(job_id);
			CREATE INDEX idx_candidates_stage ON candidates(stage);
			CREATE INDEX idx_candidates_workflow_id ON candidates(workflow_id);

			CREATE TABLE interviews (
				id VARCHAR(255) PRIMARY KEY,
				candidate_id VARCHAR(255) NOT NULL,
				interviewer_id VARCHAR(255) NOT NULL,
				job_id VARCHAR(255) NOT NULL,
				interview_type VARCHAR(100),
				round_number INT NOT NULL DEFAULT 1,
				scheduled_time TIMESTAMP WITH TIME ZONE NOT NULL,
				duration_minutes INT NOT NULL,
				meeting_link TEXT,
				meeting_id VARCHAR(255),
				status VARCHAR(50) NOT NULL,
				reschedule_count INT NOT NULL DEFAULT 0,
				max_reschedules INT NOT NULL DEFAULT 2,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_interviews_candidate_id ON interviews(candidate_id);
			CREATE INDEX idx_interviews_interviewer_time ON interviews(interviewer_id, scheduled_time);
			CREATE INDEX idx_interviews_status ON interviews(status);

			CREATE TABLE workflows (
				id VARCHAR(255) PRIMARY KEY,
				job_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('running', 'paused', 'completed', 'failed')),
				stage VARCHAR(50) NOT NULL,
				progress_percentage INT NOT NULL DEFAULT 0,
				pending_decisions JSONB DEFAULT '[]',
				decision_history JSONB DEFAULT '[]',
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				last_activity_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_job_id ON workflows(job_id);
			CREATE INDEX idx_workflows_status ON workflows(status);

			CREATE TABLE workflow_checkpoints (
				workflow_id VARCHAR(255) PRIMARY KEY,
				state JSONB NOT NULL,
				saved_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);
		`,
	}
}
