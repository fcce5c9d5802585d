// Package services implements the business logic layer of the macpulse
// application. It provides a clean separation between HTTP handlers and the
// scoring engine, ensuring that business rules are centralized and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Domain-focused methods that encapsulate business rules
//
// # Service Layer Responsibilities
//
// The service layer is responsible for:
//
//	- Request validation ahead of the scoring engine
//	- Cross-cutting concerns (logging, metrics)
//	- Error handling and transformation
//	- Guarding stateful components (proxy coefficients, rolling windows)
package services
