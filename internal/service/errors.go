package service

import "errors"

var (
	// ErrStudentNotFound indicates the student does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrTeacherNotFound indicates the teacher does not exist.
	ErrTeacherNotFound = errors.New("teacher not found")
	// ErrAssignmentNotFound indicates the assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrGradeNotFound indicates the grade row does not exist.
	ErrGradeNotFound = errors.New("grade not found")
	// ErrGradeExists indicates a grade row already exists for the student and assignment.
	ErrGradeExists = errors.New("grade already exists for this student and assignment")
	// ErrMessageNotFound indicates the message does not exist.
	ErrMessageNotFound = errors.New("message not found")
	// ErrRecipientNotFound indicates the message recipient does not exist.
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrInvalidUserType indicates an unknown participant type.
	ErrInvalidUserType = errors.New("user type must be student or teacher")
	// ErrSelfMessage indicates a sender addressed a message to themselves.
	ErrSelfMessage = errors.New("cannot send a message to yourself")
	// ErrEmptyMessage indicates the message body was empty after sanitizing.
	ErrEmptyMessage = errors.New("message content is required")
	// ErrEmptySubmission indicates a submission without content.
	ErrEmptySubmission = errors.New("submission content is required")
	// ErrUnsupportedContent indicates submission content that is not plain text.
	ErrUnsupportedContent = errors.New("submission content must be plain text")
	// ErrSubmissionLocked indicates a write that would move the submission status backwards.
	ErrSubmissionLocked = errors.New("submission can no longer be changed")
	// ErrNotSubmitted indicates grading was attempted before the student submitted.
	ErrNotSubmitted = errors.New("submission has not been handed in yet")
	// ErrTaskNotFound indicates the task is not part of the current plan.
	ErrTaskNotFound = errors.New("task not found in the current plan")
)
