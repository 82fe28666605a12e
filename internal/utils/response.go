package utils

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	apperrors "ledgerpay/internal/errors"
)

// RetryAfterSeconds is advertised on transient failures.
const RetryAfterSeconds = 1

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful JSON response.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

// Created sends a JSON response with status 201.
func Created(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusCreated, data)
}

// BadRequest sends a JSON error response with status 400.
func BadRequest(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusBadRequest, fiber.Map{"error": message})
}

// Unauthorized sends a JSON error response with status 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusUnauthorized, fiber.Map{"error": message})
}

// Forbidden sends a JSON error response with status 403.
func Forbidden(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusForbidden, fiber.Map{"error": message})
}

// NotFound sends a JSON error response with status 404.
func NotFound(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusNotFound, fiber.Map{"error": message})
}

// InternalError sends a JSON error response with status 500.
func InternalError(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusInternalServerError, fiber.Map{"error": message})
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code apperrors.Code) int {
	switch code {
	case apperrors.CodeWalletNotFound, apperrors.CodeTransactionNotFound:
		return fiber.StatusNotFound
	case apperrors.CodeInvalidAmount, apperrors.CodeSelfTransfer, apperrors.CodeInvalidRequest:
		return fiber.StatusBadRequest
	case apperrors.CodeInsufficientFunds:
		return fiber.StatusUnprocessableEntity
	case apperrors.CodeWalletExists:
		return fiber.StatusConflict
	case apperrors.CodeReferenceCollision, apperrors.CodeStorageConflict:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// DomainError writes err with the status its code maps to. Internal errors
// are reported without their cause.
func DomainError(c *fiber.Ctx, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(RetryAfterSeconds))
		return Respond(c, fiber.StatusServiceUnavailable, fiber.Map{"error": "request timed out"})
	}

	code := apperrors.CodeOf(err)
	status := StatusFor(code)

	message := "internal server error"
	if code != apperrors.CodeInternal {
		message = apperrors.MessageOf(err)
	}
	if code.Transient() {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(RetryAfterSeconds))
	}
	return Respond(c, status, fiber.Map{"error": message, "code": code})
}
