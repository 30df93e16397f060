// Package utils provides input validation shared by the HTTP API, the CLI
// and the project store.
//
// Validation:
//   - Request body size and JSON structure
//   - Source and test blob size and encoding
//   - Project name and enum fields
//
// Every failure is a *ValidationError wrapping ErrInvalid, so callers can
// map it to a 400 response with errors.Is.
//
// Example Usage:
//
//	if err := utils.ValidateCode("code", req.Code); err != nil {
//		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
//	}
package utils
